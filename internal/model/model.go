// Package model declares the relational schema: boats and races for
// initial state, plus the per-tick boat log and celestial sight records.
package model

import "time"

// DatabaseModels lists every struct migrated into the database schema.
var DatabaseModels = []interface{}{
	&Boat{},
	&BoatRace{},
	&BoatLog{},
	&CelestialSight{},
}

// Boat is the persisted identity and configuration of one boat.
type Boat struct {
	Name          string  `json:"name" gorm:"primaryKey;size:127"`
	Race          string  `json:"race" gorm:"size:127;index"`
	GroupName     string  `json:"group" gorm:"size:127"`
	AltName       string  `json:"altName" gorm:"size:127"`
	DesiredCourse float64 `json:"desiredCourse"`
	Started       bool    `json:"started"`
	BoatType      int     `json:"boatType"`
	BoatFlags     int     `json:"boatFlags"`
	SailArea      int     `json:"sailArea"`
}

func (*Boat) TableName() string {
	return "Boat"
}

// BoatRace groups boats racing together; newly added boats with no log
// history start from the race's start position.
type BoatRace struct {
	Race      string    `json:"race" gorm:"primaryKey;size:127"`
	Name      string    `json:"name" gorm:"size:255"`
	StartLat  float64   `json:"startLat"`
	StartLon  float64   `json:"startLon"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (*BoatRace) TableName() string {
	return "BoatRace"
}

// BoatLog is one logged tick of one boat. Pointer columns are NULL when
// the corresponding environmental data was unavailable.
type BoatLog struct {
	ID       uint   `gorm:"primaryKey"`
	Time     int64  `json:"time" gorm:"index:idx_boatlog_time"`
	BoatName string `json:"boatName" gorm:"size:127;index:idx_boatlog_name"`

	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	CourseWater float64 `json:"courseWater"`
	SpeedWater  float64 `json:"speedWater"`
	TrackGround float64 `json:"trackGround"`
	SpeedGround float64 `json:"speedGround"`

	WindDir   float64 `json:"windDir"`
	WindSpeed float64 `json:"windSpeed"`
	WindGust  float64 `json:"windGust"`

	OceanCurrentDir   *float64 `json:"oceanCurrentDir"`
	OceanCurrentSpeed *float64 `json:"oceanCurrentSpeed"`
	WaterTemp         *float64 `json:"waterTemp"`
	Salinity          *float64 `json:"salinity"`
	OceanIce          *float64 `json:"oceanIce"`

	Temp       float64 `json:"temp"`
	Dewpoint   float64 `json:"dewpoint"`
	Pressure   float64 `json:"pressure"`
	Cloud      float64 `json:"cloud"`
	Visibility float64 `json:"visibility"`
	PrecipRate float64 `json:"precipRate"`
	PrecipType int     `json:"precipType"`

	WaveHeight *float64 `json:"waveHeight"`

	BoatStatus        int     `json:"boatStatus"`
	BoatLocation      int     `json:"boatLocation"`
	DistanceTravelled float64 `json:"distanceTravelled"`
	Damage            float64 `json:"damage"`
	CompassMagDec     float64 `json:"compassMagDec"`
	Invisible         bool    `json:"invisible"`
}

func (*BoatLog) TableName() string {
	return "BoatLog"
}

// CelestialSight is one successful celestial observation from a boat.
type CelestialSight struct {
	ID       uint    `gorm:"primaryKey"`
	Time     int64   `json:"time" gorm:"index:idx_sight_time"`
	BoatName string  `json:"boatName" gorm:"size:127;index:idx_sight_name"`
	Obj      int     `json:"obj"`
	Az       float64 `json:"az"`
	Alt      float64 `json:"alt"`
}

func (*CelestialSight) TableName() string {
	return "CelestialSight"
}
