package models

type CreateOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	TableNumber string                   `json:"table_number" binding:"required"`
	Items       []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" form:"status" binding:"required"`
}

type LoginRequest struct {
	Passcode string `json:"passcode" form:"passcode" binding:"required"`
}

type AutoPrintRequest struct {
	Enabled *bool `json:"enabled" form:"enabled" binding:"required"`
}

type EmailReportRequest struct {
	To        string `json:"to" binding:"required,email"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type SettingsResponse struct {
	AutoPrint     bool   `json:"auto_print"`
	AutoPrintMode string `json:"auto_print_mode"`
	Live          bool   `json:"live"`
	Timezone      string `json:"timezone"`
}
