package models

// Tag is an admin-managed label attached to recipes many-to-many.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
}

func (Tag) TableName() string {
	return "tags"
}
