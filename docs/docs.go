// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"termsOfService": "http://swagger.io/terms/",
		"contact": {
			"name": "API Support",
			"email": "support@example.com"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a customer account",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.RegisterInput"
						}
					}
				]
			}
		},
		"/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"429": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.LoginInput"
						}
					}
				]
			}
		},
		"/profile": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user and order history",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"auth"
				],
				"summary": "Update profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.ProfileInput"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/movies": {
			"get": {
				"tags": [
					"movies"
				],
				"summary": "Get all movies",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "genre",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "release_date",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "search",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "sort_by",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "order",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "start_date",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "end_date",
						"in": "query"
					}
				]
			},
			"post": {
				"tags": [
					"movies"
				],
				"summary": "Create a new movie",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.MovieRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/movies/{id}": {
			"get": {
				"tags": [
					"movies"
				],
				"summary": "Get movie by ID",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"tags": [
					"movies"
				],
				"summary": "Update a movie",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.MovieRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"movies"
				],
				"summary": "Delete a movie",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/movies/{id}/showtimes": {
			"get": {
				"tags": [
					"showtimes"
				],
				"summary": "Upcoming showtimes of a movie",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"post": {
				"tags": [
					"showtimes"
				],
				"summary": "Schedule a showtime",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.ShowtimeInput"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/genres": {
			"get": {
				"tags": [
					"movies"
				],
				"summary": "List genres",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				}
			}
		},
		"/showtimes/{id}": {
			"get": {
				"tags": [
					"showtimes"
				],
				"summary": "Get a showtime with its movie",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"showtimes"
				],
				"summary": "Delete a showtime",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/showtimes/{id}/seats": {
			"get": {
				"tags": [
					"booking"
				],
				"summary": "Seat map of a showtime",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/showtimes/{id}/quote": {
			"post": {
				"tags": [
					"booking"
				],
				"summary": "Price a seat selection",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.SeatsInput"
						}
					}
				]
			}
		},
		"/showtimes/{id}/holds": {
			"post": {
				"tags": [
					"booking"
				],
				"summary": "Hold seats for the caller",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.SeatsInput"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"booking"
				],
				"summary": "Release the caller's holds",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "The caller's orders",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"orders"
				],
				"summary": "Buy seats",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/services.CheckoutInput"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/orders/{id}": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Get one of the caller's orders",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"orders"
				],
				"summary": "Cancel an order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/sync/movies": {
			"post": {
				"tags": [
					"sync"
				],
				"summary": "Sync movies from TMDB",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"500": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"503": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "pages",
						"in": "query"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/sync/last-log": {
			"get": {
				"tags": [
					"sync"
				],
				"summary": "Get last sync log",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/dashboard/stats": {
			"get": {
				"tags": [
					"dashboard"
				],
				"summary": "Get dashboard statistics",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/charts/genres": {
			"get": {
				"tags": [
					"charts"
				],
				"summary": "Movie count per genre",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				}
			}
		},
		"/charts/years": {
			"get": {
				"tags": [
					"charts"
				],
				"summary": "Movie count per release year",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "start_date",
						"in": "query"
					},
					{
						"type": "string",
						"description": "",
						"name": "end_date",
						"in": "query"
					}
				]
			}
		},
		"/charts/monthly/{year}": {
			"get": {
				"tags": [
					"charts"
				],
				"summary": "Movie count per month of a year",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "",
						"name": "year",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/upload/presign": {
			"get": {
				"tags": [
					"Upload"
				],
				"summary": "Get presigned URL for banner upload",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					},
					"503": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/utils.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "",
						"name": "filename",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "",
						"name": "contentType",
						"in": "query"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"utils.StandardResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {
					"type": "object"
				},
				"meta": {
					"type": "object"
				}
			}
		},
		"handlers.MovieRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"genre": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"release_date": {
					"type": "string"
				},
				"rating": {
					"type": "number"
				},
				"banner": {
					"type": "string"
				}
			}
		},
		"services.RegisterInput": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"confirm_password": {
					"type": "string"
				}
			}
		},
		"services.LoginInput": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"services.ProfileInput": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"favorite_genres": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"notifications": {
					"type": "boolean"
				}
			}
		},
		"services.ShowtimeInput": {
			"type": "object",
			"properties": {
				"starts_at": {
					"type": "string"
				},
				"auditorium": {
					"type": "string"
				},
				"rows": {
					"type": "integer"
				},
				"seats_per_row": {
					"type": "integer"
				},
				"seat_price_cents": {
					"type": "integer"
				}
			}
		},
		"services.SeatsInput": {
			"type": "object",
			"properties": {
				"seats": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"services.CheckoutInput": {
			"type": "object",
			"properties": {
				"showtime_id": {
					"type": "integer"
				},
				"seats": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"payment_method": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Movie Booking API",
	Description:      "Movie catalogue, showtimes, seat holds and ticket orders for the cinema app",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
