package model

// LocalizedText holds the English and Vietnamese renditions of a display
// string. English is the canonical form: slugs and search ranking derive
// from it.
type LocalizedText struct {
	En string `json:"en" bson:"en"`
	Vi string `json:"vi" bson:"vi"`
}

func (t LocalizedText) Empty() bool {
	return t.En == "" && t.Vi == ""
}

// Image is a stored picture with its object-store key and per-language alt text.
type Image struct {
	URL      string        `json:"url" bson:"url" validate:"required,url"`
	PublicID string        `json:"publicId" bson:"public_id" validate:"required"`
	Alt      LocalizedText `json:"alt,omitempty" bson:"alt,omitempty"`
}
