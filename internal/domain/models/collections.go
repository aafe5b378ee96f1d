// internal/domain/models/collections.go
package models

// Collection names shared by the stores and the migrator.
const (
	UsersCollection      = "users"
	CategoriesCollection = "categories"
	GroupsCollection     = "groups"
	ItemsCollection      = "items"
	ChartItemsCollection = "chartitems"
)
