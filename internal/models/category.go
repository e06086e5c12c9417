package models

// Catégories acceptées pour un produit.
var Categories = []string{
	"Dining", "Living", "Bedroom", "Office", "Kitchen", "Bathroom", "Outdoor", "Storage", "Decor",
	"Sofas", "Beds", "Study Tables", "Centre Tables", "Recliners", "Sectional Sofas", "Wardrobes",
	"Cabinets & Sideboards", "Shoe Racks", "Bar Furniture", "Sofa Cum Beds", "Bedside Tables",
	"Crockery Units", "Book Shelves", "Side Tables", "Chairs", "Sofa Chairs", "Dressing Tables",
	"Book Cases", "Stools & Pouffes", "Gaming Chairs", "Bean Bags", "Massagers", "Trunks",
	"Dining Sets", "Office Furniture",
}

const DefaultCategory = "Living"

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

func IsValidCategory(name string) bool {
	_, ok := categorySet[name]
	return ok
}
