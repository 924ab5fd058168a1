package models

// Rule is a single community rule. Number is the stable ordering key,
// Alias holds the lookup shortcuts ("tos", "nsfw", ...).
type Rule struct {
	Number    int      `json:"number" bson:"number"`
	Alias     []string `json:"alias" bson:"alias"`
	Statement string   `json:"statement" bson:"statement"`
}
