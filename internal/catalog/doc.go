// Package catalog owns the persisted menu: CRUD over the "menuItems"
// collection, the student search filter, and bulk import of menus written
// in CUE.
package catalog
