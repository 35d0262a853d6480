package models

// Coordinate is a geographic position as reported by clients and the
// geocoding oracle.
type Coordinate struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// GeoPoint is a GeoJSON Point as stored in MongoDB. Coordinates are
// [longitude, latitude]; the order is significant and must be preserved.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON Point from a coordinate.
func NewGeoPoint(c Coordinate) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{c.Lng, c.Lat}}
}

// Place is an address together with its resolved [longitude, latitude] pair.
type Place struct {
	Address     string    `bson:"address" json:"address"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPlace builds a Place from an address and its resolved coordinate.
func NewPlace(address string, c Coordinate) Place {
	return Place{Address: address, Coordinates: []float64{c.Lng, c.Lat}}
}
