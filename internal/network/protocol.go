package network

import (
	"encoding/json"

	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/stock"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Message types - Client → Server
const (
	MsgTypeOpenShop   = "open_shop"
	MsgTypeListShops  = "list_shops"
	MsgTypeRefresh    = "refresh"
	MsgTypeDayStarted = "day_started"
	MsgTypeHarvest    = "harvest"
	MsgTypePing       = "ping"
)

// Message types - Server → Client
const (
	MsgTypeShopStock       = "shop_stock"
	MsgTypeShopClosed      = "shop_closed"
	MsgTypeShopList        = "shop_list"
	MsgTypeStocksRefreshed = "stocks_refreshed"
	MsgTypeHarvestDrops    = "harvest_drops"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// OpenShopPayload is sent by client to open a shop
type OpenShopPayload struct {
	Shop string `json:"shop"`
}

// RefreshPayload asks for one shop, or every shop when empty, to be restocked
type RefreshPayload struct {
	Shop string `json:"shop,omitempty"`
}

// DayStartedPayload carries the world state of the new day
type DayStartedPayload struct {
	World world.Snapshot `json:"world"`
}

// HarvestPayload asks for the extra drops of a harvested crop
type HarvestPayload struct {
	Crop       string `json:"crop"`
	Fertilizer int    `json:"fertilizer"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

// --- Server Message Payloads ---

// ShopStockPayload is the listing of an open shop
type ShopStockPayload struct {
	Shop         string        `json:"shop"`
	Currency     string        `json:"currency"`
	CurrencyCode int           `json:"currency_code"`
	Quote        string        `json:"quote,omitempty"`
	Categories   []string      `json:"categories,omitempty"`
	FirstToday   bool          `json:"first_today"`
	Entries      stock.Listing `json:"entries"`
}

// ShopClosedPayload is sent when a shop's conditions refuse the request
type ShopClosedPayload struct {
	Shop    string `json:"shop"`
	Message string `json:"message,omitempty"`
}

// ShopSummary describes one registered shop
type ShopSummary struct {
	Name    string `json:"name"`
	Pack    string `json:"pack,omitempty"`
	State   string `json:"state"`
	Day     int    `json:"day"`
	Entries int    `json:"entries"`
}

// ShopListPayload lists registered shops in registration order
type ShopListPayload struct {
	Shops []ShopSummary `json:"shops"`
}

// StocksRefreshedPayload is broadcast after shops are restocked
type StocksRefreshedPayload struct {
	Shops []string `json:"shops"`
	Day   int      `json:"day"`
}

// HarvestDropsPayload lists the extra drops of a harvest
type HarvestDropsPayload struct {
	Crop  string         `json:"crop"`
	Drops []harvest.Drop `json:"drops"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
