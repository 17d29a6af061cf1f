package validators

import "go.mongodb.org/mongo-driver/bson"

var ProductValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"slug",
			"title",
			"category",
			"pricing",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"slug": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
				"pattern":   "^[a-z0-9]+(-[a-z0-9]+)*$",
			},

			"title": bson.M{
				"bsonType": "object",
				"required": []string{"en", "vi"},
				"properties": bson.M{
					"en": bson.M{"bsonType": "string", "minLength": 1},
					"vi": bson.M{"bsonType": "string", "minLength": 1},
				},
			},

			"short_description": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"en": bson.M{"bsonType": "string", "maxLength": 300},
					"vi": bson.M{"bsonType": "string", "maxLength": 300},
				},
			},

			"category": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"pricing": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"adult":    bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					"child":    bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					"per_trip": bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					"per_km":   bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
				},
			},

			"duration": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"days":   bson.M{"bsonType": "int", "minimum": 0, "maximum": 60},
					"nights": bson.M{"bsonType": "int", "minimum": 0, "maximum": 60},
				},
			},

			"transfer_service": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"type": bson.M{
						"enum": []string{"sedan", "suv", "van", "minibus", "bus", "limousine"},
					},
					"seats": bson.M{"bsonType": "int", "minimum": 1, "maximum": 100},
				},
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"is_featured": bson.M{
				"bsonType": "bool",
			},

			"rating": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"average": bson.M{"bsonType": []string{"double", "int"}, "minimum": 0, "maximum": 5},
					"count":   bson.M{"bsonType": "int", "minimum": 0},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
