package models

// Post is a published piece of coaching content with its engagement counters
type Post struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Caption        *string    `json:"caption,omitempty"`
	Hashtags       *string    `json:"hashtags,omitempty"`
	Likes          int        `json:"likes"`
	Comments       int        `json:"comments"`
	Shares         int        `json:"shares"`
	EngagementRate float64    `json:"engagement_rate"`
	ProjectID      *int64     `json:"project_id,omitempty"`
	UserID         int64      `json:"user_id"`
	PublishedAt    *Timestamp `json:"published_at,omitempty"`
	CreatedAt      Timestamp  `json:"created_at"`
	UpdatedAt      Timestamp  `json:"updated_at"`
}

type PostCreate struct {
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Caption        string     `json:"caption,omitempty"`
	Hashtags       string     `json:"hashtags,omitempty"`
	Likes          int        `json:"likes,omitempty"`
	Comments       int        `json:"comments,omitempty"`
	Shares         int        `json:"shares,omitempty"`
	EngagementRate float64    `json:"engagement_rate,omitempty"`
	ProjectID      *int64     `json:"project_id,omitempty"`
	PublishedAt    *Timestamp `json:"published_at,omitempty"`
}

func (p *PostCreate) Validate() error {
	if p.Title == "" {
		return required("title")
	}
	if p.Content == "" {
		return required("content")
	}
	return nil
}

type PostUpdate struct {
	Title          *string    `json:"title,omitempty"`
	Content        *string    `json:"content,omitempty"`
	Caption        *string    `json:"caption,omitempty"`
	Hashtags       *string    `json:"hashtags,omitempty"`
	Likes          *int       `json:"likes,omitempty"`
	Comments       *int       `json:"comments,omitempty"`
	Shares         *int       `json:"shares,omitempty"`
	EngagementRate *float64   `json:"engagement_rate,omitempty"`
	ProjectID      *int64     `json:"project_id,omitempty"`
	PublishedAt    *Timestamp `json:"published_at,omitempty"`
}

func (p *PostUpdate) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return required("title")
	}
	if p.Content != nil && *p.Content == "" {
		return required("content")
	}
	return nil
}
