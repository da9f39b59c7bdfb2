package models

// FoodTypes - фиксированный каталог тегов еды для постов
var FoodTypes = []string{
	"Tacos",
	"Pizza",
	"Burgers",
	"Sandwiches",
	"Sushi",
	"Salads",
	"Desserts",
	"Coffee",
	"Drinks",
	"Other",
}

var foodTypeSet = func() map[string]bool {
	set := make(map[string]bool, len(FoodTypes))
	for _, ft := range FoodTypes {
		set[ft] = true
	}
	return set
}()

func IsValidFoodType(name string) bool {
	return foodTypeSet[name]
}
