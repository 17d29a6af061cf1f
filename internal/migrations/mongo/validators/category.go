package validators

import "go.mongodb.org/mongo-driver/bson"

var CategoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"slug",
			"name",
			"type",
			"level",
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

			"name": bson.M{
				"bsonType": "object",
				"required": []string{"en", "vi"},
				"properties": bson.M{
					"en": bson.M{"bsonType": "string", "minLength": 1},
					"vi": bson.M{"bsonType": "string", "minLength": 1},
				},
			},

			"type": bson.M{
				"enum": []string{"vietnam-tours", "transfer-services"},
			},

			"parent": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"subcategories": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"level": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  2,
			},

			"region": bson.M{
				"enum": []string{"north", "central", "south", "all"},
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"sort_order": bson.M{
				"bsonType": "int",
				"minimum":  0,
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
