package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"first_name",
			"last_name",
			"email",
			"birth_date",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"pattern":   "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
				"maxLength": 254,
			},

			"birth_date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"gender": bson.M{
				"bsonType": "string",
				"enum": []string{
					"male",
					"female",
					"other",
				},
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"country_code": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 2,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
