// Package boatinit materializes the starting fleet: from the relational
// sink when it holds boats (resuming each from its most recent log row),
// or from a plain CSV file otherwise.
package boatinit

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/database"
	"github.com/ls4096/sailnavsim-core/internal/logger"
	"github.com/ls4096/sailnavsim-core/internal/model"
	"github.com/ls4096/sailnavsim-core/internal/registry"
)

// Load fills the registry from the database if it holds any boats, else
// from the CSV file at initPath. A missing file and an empty database
// simply mean no boats.
func Load(reg *registry.Registry, db *database.Manager, initPath string, log zerolog.Logger) error {
	if db != nil && db.IsValid {
		n, err := loadFromDB(reg, db.DB, log)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("boats", n).Msg("Boats loaded from database")
			return nil
		}
	}

	n, err := loadFromFile(reg, initPath, log)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int("boats", n).Msg("Boats loaded from init file")
	} else {
		log.Info().Msg("Boat init found nothing. Continuing with no boats.")
	}
	return nil
}

func loadFromDB(reg *registry.Registry, db *gorm.DB, log zerolog.Logger) (int, error) {
	var boats []model.Boat
	if err := db.Find(&boats).Error; err != nil {
		return 0, err
	}

	added := 0
	for i := range boats {
		v, err := materialize(db, &boats[i], log)
		if err != nil {
			log.Error().Err(err).Str("boat", boats[i].Name).Msg("Skipping boat on init")
			continue
		}
		if v == nil {
			continue
		}

		if err := reg.Add(v, boats[i].Name, boats[i].GroupName, boats[i].AltName); err != nil {
			log.Error().Err(err).Str("boat", boats[i].Name).Msg("Failed to add boat to registry")
			continue
		}
		added++
	}

	return added, nil
}

// materialize builds one vessel from its Boat row, resuming from the most
// recent log row when one exists and falling back to the race start
// position otherwise.
func materialize(db *gorm.DB, row *model.Boat, log zerolog.Logger) (*boat.Vessel, error) {
	var last model.BoatLog
	err := db.Where("boat_name = ?", row.Name).Order("time DESC").First(&last).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Nothing logged yet: newly added boat, starting from the race
		// start line.
		var race model.BoatRace
		if err := db.Where("race = ?", row.Race).First(&race).Error; err != nil {
			return nil, err
		}

		v := newVessel(race.StartLat, race.StartLon, row)
		return v, nil
	}
	if err != nil {
		return nil, err
	}

	v := newVessel(last.Lat, last.Lon, row)
	v.V.Angle = last.CourseWater
	v.V.Mag = last.SpeedWater
	v.DistanceTravelled = last.DistanceTravelled

	v.Stop = last.BoatStatus == logger.StateStopped && !row.Started
	v.SailsDown = last.BoatLocation == logger.LocWater && !row.Started
	v.MovingToSea = last.BoatLocation == logger.LocLanded && row.Started

	if v.Stop {
		v.V.Mag = 0.0
	}

	return v, nil
}

func newVessel(lat, lon float64, row *model.Boat) *boat.Vessel {
	v := boat.New(lat, lon, row.BoatType, boat.Flags(row.BoatFlags))
	v.DesiredCourse = row.DesiredCourse
	if row.SailArea > 0 {
		v.SailArea = float64(row.SailArea) / 100.0
	}
	return v
}

// loadFromFile ingests "name,lat,lon,type" lines. Parsing stops at the
// first malformed line, matching the original file format's behavior.
func loadFromFile(reg *registry.Registry, path string, log zerolog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	added := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, lat, lon, boatType, err := parseInitLine(sc.Text())
		if err != nil {
			break
		}

		if err := reg.Add(boat.New(lat, lon, boatType, 0), name, "", ""); err != nil {
			log.Error().Err(err).Str("boat", name).Msg("Failed to add boat to registry")
			continue
		}
		added++
	}

	return added, sc.Err()
}

func parseInitLine(line string) (name string, lat, lon float64, boatType int, err error) {
	tok := strings.Split(strings.TrimSpace(line), ",")
	if len(tok) < 4 || tok[0] == "" {
		return "", 0, 0, 0, errors.New("bad boat init line")
	}

	if lat, err = strconv.ParseFloat(tok[1], 64); err != nil {
		return "", 0, 0, 0, err
	}
	if lon, err = strconv.ParseFloat(tok[2], 64); err != nil {
		return "", 0, 0, 0, err
	}
	if boatType, err = strconv.Atoi(tok[3]); err != nil {
		return "", 0, 0, 0, err
	}

	return tok[0], lat, lon, boatType, nil
}
