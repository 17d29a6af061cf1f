package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reference",
			"customer_info",
			"product",
			"product_snapshot",
			"travel_date",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reference": bson.M{
				"bsonType":  "string",
				"minLength": 5,
				"maxLength": 40,
			},

			"customer_info": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email", "phone"},
				"properties": bson.M{
					"name":  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
					"email": bson.M{"bsonType": "string", "minLength": 3},
					"phone": bson.M{"bsonType": "string", "minLength": 6, "maxLength": 20},
				},
			},

			"product": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"travel_date": bson.M{
				"bsonType": "date",
			},

			"participants": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"adults":   bson.M{"bsonType": "int", "minimum": 1, "maximum": 100},
					"children": bson.M{"bsonType": "int", "minimum": 0, "maximum": 100},
				},
			},

			"total_price": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"amount": bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
				},
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "completed", "cancelled", "refunded"},
			},

			"cancellation_date": bson.M{
				"bsonType": "date",
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
