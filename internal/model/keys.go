package model

// Keys of the persisted collections and session scalars.
// Every collection is stored as one blob; there is no per-record addressing.
const (
	KeyMenuItems     = "menuItems"
	KeyCart          = "cart"
	KeyFavorites     = "favorites"
	KeyActiveOrders  = "activeOrders"
	KeyHistoryOrders = "historyOrders"
	KeyUserEmail     = "userEmail"
	KeyUserRole      = "userRole"
)
