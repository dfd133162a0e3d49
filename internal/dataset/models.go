package dataset

// BookRecord is one row of the catalog table. Raw fields come straight
// from the input file; normalized and canonical fields are derived by the
// cleaning pipeline and are nil whenever derivation failed.
type BookRecord struct {
	// Raw input fields
	Title         string `json:"title" parquet:"title"`
	Description   string `json:"description,omitempty" parquet:"description,optional"`
	Authors       string `json:"authors,omitempty" parquet:"authors,optional"`
	Publisher     string `json:"publisher,omitempty" parquet:"publisher,optional"`
	PublishedDate string `json:"published_date,omitempty" parquet:"published_date,optional"`
	Categories    string `json:"categories,omitempty" parquet:"categories,optional"`
	RatingsCount  string `json:"ratings_count,omitempty" parquet:"ratings_count,optional"`

	// Normalized comparison keys
	TitleNorm      *string `json:"title_norm,omitempty" parquet:"title_norm,optional"`
	AuthorsNorm    *string `json:"authors_norm,omitempty" parquet:"authors_norm,optional"`
	PublisherNorm  *string `json:"publisher_norm,omitempty" parquet:"publisher_norm,optional"`
	CategoriesNorm *string `json:"categories_norm,omitempty" parquet:"categories_norm,optional"`

	// Canonical representative spellings
	TitleCanonical      *string `json:"title_canonical,omitempty" parquet:"title_canonical,optional"`
	AuthorsCanonical    *string `json:"authors_canonical,omitempty" parquet:"authors_canonical,optional"`
	PublisherCanonical  *string `json:"publisher_canonical,omitempty" parquet:"publisher_canonical,optional"`
	CategoriesCanonical *string `json:"categories_canonical,omitempty" parquet:"categories_canonical,optional"`

	// Publication year parsed from the raw date; nil if unparseable
	PublishedYear *int `json:"published_year,omitempty" parquet:"published_year,optional"`
}

// ReviewRecord is one review row, linked to a BookRecord by TitleNorm.
// The link is a loose many-to-one key; collisions are expected.
type ReviewRecord struct {
	ID          string  `json:"id,omitempty" parquet:"id,optional"`
	Title       string  `json:"title" parquet:"title"`
	UserID      string  `json:"user_id,omitempty" parquet:"user_id,optional"`
	ProfileName string  `json:"profile_name,omitempty" parquet:"profile_name,optional"`
	Helpfulness string  `json:"helpfulness,omitempty" parquet:"helpfulness,optional"`
	Score       float64 `json:"score,omitempty" parquet:"score,optional"`
	Summary     string  `json:"summary,omitempty" parquet:"summary,optional"`
	Text        string  `json:"text,omitempty" parquet:"text,optional"`

	TitleNorm *string `json:"title_norm,omitempty" parquet:"title_norm,optional"`
}

// MissingFieldCount counts the empty raw fields plus the nil derived
// fields of the row. Both deduplicators use this as the completeness
// metric when choosing which duplicate survives.
func (r *BookRecord) MissingFieldCount() int {
	count := 0

	for _, raw := range []string{r.Title, r.Description, r.Authors, r.Publisher, r.PublishedDate, r.Categories, r.RatingsCount} {
		if raw == "" {
			count++
		}
	}

	for _, derived := range []*string{
		r.TitleCanonical, r.AuthorsCanonical, r.PublisherCanonical, r.CategoriesCanonical,
	} {
		if derived == nil {
			count++
		}
	}

	if r.PublishedYear == nil {
		count++
	}

	return count
}

// RawKey joins the raw fields into a single identity string, used to drop
// exact byte-identical duplicate rows at ingestion.
func (r *BookRecord) RawKey() string {
	return r.Title + "\x1f" + r.Description + "\x1f" + r.Authors + "\x1f" +
		r.Publisher + "\x1f" + r.PublishedDate + "\x1f" + r.Categories + "\x1f" + r.RatingsCount
}

// RawKey is the exact-duplicate identity of a review row.
func (r *ReviewRecord) RawKey() string {
	return r.ID + "\x1f" + r.Title + "\x1f" + r.UserID + "\x1f" + r.ProfileName + "\x1f" +
		r.Helpfulness + "\x1f" + r.Summary + "\x1f" + r.Text
}
