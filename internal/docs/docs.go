// Package docs holds the Swagger document served at /swagger. Regenerate with:
//
//	swag init -g cmd/api-service/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tokens": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "List analyzed tokens",
                "parameters": [
                    {"type": "string", "description": "BUY, HOLD or AVOID", "name": "recommendation", "in": "query"},
                    {"type": "string", "description": "Exact symbol", "name": "symbol", "in": "query"},
                    {"type": "string", "description": "Substring of name or symbol", "name": "search", "in": "query"},
                    {"type": "string", "description": "Comma separated columns, prefix with - for descending", "name": "ordering", "in": "query"},
                    {"type": "integer", "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tokens/check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Look up a token",
                "parameters": [
                    {"type": "string", "description": "Name, symbol or address", "name": "search", "in": "query", "required": true},
                    {"type": "string", "description": "name (default) or address", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenCheckResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tokens/update": {
            "post": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Run a batch update",
                "parameters": [
                    {"type": "boolean", "description": "Queue the update instead of running it", "name": "async", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UpdateResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.UpdateResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tokens/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Get a token by ID",
                "parameters": [
                    {"type": "integer", "description": "Token ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.Token"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tokens/{id}/update": {
            "post": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Refresh one token",
                "parameters": [
                    {"type": "integer", "description": "Token ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.Token"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/recommendations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["recommendations"],
                "summary": "List BUY picks",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of tokens", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.Token"}}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Recommendation counts and top BUY picks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DashboardResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.ItemResult": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "pair_address": {"type": "string"},
                "token_address": {"type": "string"},
                "symbol": {"type": "string"},
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "recommendation": {"type": "string"}
            }
        },
        "dto.BatchReport": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "fetched": {"type": "integer"},
                "processed": {"type": "integer"},
                "updated": {"type": "integer"},
                "skipped": {"type": "integer"},
                "failed": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/dto.ItemResult"}},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "dto.UpdateResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "updated_count": {"type": "integer"},
                "queued": {"type": "boolean"},
                "message_id": {"type": "string"},
                "report": {"$ref": "#/definitions/dto.BatchReport"}
            }
        },
        "dto.TokenListResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/entity.Token"}}
            }
        },
        "dto.TokenCheckResponse": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "tokens": {"type": "array", "items": {"$ref": "#/definitions/entity.Token"}}
            }
        },
        "dto.DashboardResponse": {
            "type": "object",
            "properties": {
                "total_tokens": {"type": "integer"},
                "buy_count": {"type": "integer"},
                "hold_count": {"type": "integer"},
                "avoid_count": {"type": "integer"},
                "top_buys": {"type": "array", "items": {"$ref": "#/definitions/entity.Token"}}
            }
        },
        "entity.Token": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "pair_address": {"type": "string"},
                "token_address": {"type": "string"},
                "chain_id": {"type": "string"},
                "dex_id": {"type": "string"},
                "name": {"type": "string"},
                "symbol": {"type": "string"},
                "price_usd": {"type": "string"},
                "price_native": {"type": "string"},
                "market_cap": {"type": "integer"},
                "fdv": {"type": "integer"},
                "volume_24h": {"type": "integer"},
                "liquidity": {"type": "integer"},
                "price_change_24h": {"type": "string"},
                "price_change_1h": {"type": "string"},
                "price_change_7d": {"type": "string"},
                "buys_24h": {"type": "integer"},
                "sells_24h": {"type": "integer"},
                "image_url": {"type": "string"},
                "website_url": {"type": "string"},
                "websites": {"type": "array", "items": {"type": "string"}},
                "twitter_handle": {"type": "string"},
                "telegram_handle": {"type": "string"},
                "discord_handle": {"type": "string"},
                "pair_created_at": {"type": "string"},
                "recommendation": {"type": "string", "enum": ["BUY", "HOLD", "AVOID"]},
                "analysis_score": {"type": "string"},
                "volatility_index": {"type": "string"},
                "stop_loss_level": {"type": "string"},
                "suggested_position_size": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "DEX Token Analyzer API",
	Description:      "Scores DexScreener pairs and serves BUY, HOLD and AVOID recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
