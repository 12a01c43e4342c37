package models

// UserModel is a site member. Username is the only lookup key; uniqueness is
// not enforced beyond lookup-by-key.
type UserModel struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Bio         string  `json:"bio"`
	Avatar      *Avatar `json:"avatar,omitempty"`
	Banned      bool    `json:"banned,omitempty"` // advisory only, no enforcement
}

// Avatar is an inline-encoded profile image.
type Avatar struct {
	MimeType string `json:"mimeType"`
	Content  string `json:"content"` // data URL
}
