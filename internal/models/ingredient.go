package models

// Ingredient is a catalog entry. The same name may appear with several
// measurement units, but each (name, unit) pair exists exactly once.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
