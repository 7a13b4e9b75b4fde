// Package logger drains telemetry batches from the simulation loop on its
// own goroutine, appending per-boat CSV files and inserting rows into the
// relational sink transactionally.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ls4096/sailnavsim-core/internal/database"
	"github.com/ls4096/sailnavsim-core/internal/model"
)

const queueCapacity = 64

// Logger is the single-consumer telemetry writer.
type Logger struct {
	csvDir string
	db     *database.Manager

	ch  chan Batch
	log zerolog.Logger
}

// New returns a Logger writing CSVs under csvDir and rows through db.
// Either sink may be absent (empty dir / nil or invalid manager).
func New(csvDir string, db *database.Manager, log zerolog.Logger) *Logger {
	return &Logger{
		csvDir: csvDir,
		db:     db,
		ch:     make(chan Batch, queueCapacity),
		log:    log,
	}
}

// Enqueue hands a batch to the logger. Batches are consumed strictly in
// enqueue order.
func (l *Logger) Enqueue(b Batch) {
	l.ch <- b
}

// QueueLen returns the number of batches waiting to be written.
func (l *Logger) QueueLen() int {
	return len(l.ch)
}

// Run consumes batches forever; callers start it on its own goroutine.
func (l *Logger) Run() {
	for b := range l.ch {
		l.writeSQL(b)
		l.writeCSV(b)
	}
}

func (l *Logger) writeSQL(b Batch) {
	if l.db == nil || !l.db.IsValid {
		return
	}

	if len(b.Entries) > 0 {
		rows := make([]model.BoatLog, 0, len(b.Entries))
		for i := range b.Entries {
			rows = append(rows, toBoatLog(&b.Entries[i]))
		}
		l.insertRetrying(func(tx *gorm.DB) error {
			return tx.Create(&rows).Error
		}, "boat logs")
	}

	if len(b.Sights) > 0 {
		rows := make([]model.CelestialSight, 0, len(b.Sights))
		for _, s := range b.Sights {
			rows = append(rows, model.CelestialSight{
				Time:     s.Time,
				BoatName: s.BoatName,
				Obj:      s.Sight.Obj,
				Az:       s.Sight.Az,
				Alt:      s.Sight.Alt,
			})
		}
		l.insertRetrying(func(tx *gorm.DB) error {
			return tx.Create(&rows).Error
		}, "celestial sights")
	}
}

// insertRetrying runs one transaction, retrying forever on "busy"
// contention and skipping the batch on any other failure.
func (l *Logger) insertRetrying(fn func(tx *gorm.DB) error, what string) {
	for {
		err := l.db.DB.Transaction(fn)
		if err == nil {
			return
		}

		if database.IsBusy(err) {
			l.log.Warn().Msgf("Got BUSY writing %s. Trying again in 1 second...", what)
			time.Sleep(time.Second)
			continue
		}

		l.log.Error().Err(err).Msgf("Failed to write %s; skipping batch", what)
		return
	}
}

func toBoatLog(e *Entry) model.BoatLog {
	row := model.BoatLog{
		Time:     e.Time,
		BoatName: e.BoatName,

		Lat:         e.Pos.Lat,
		Lon:         e.Pos.Lon,
		CourseWater: e.VWater.Angle,
		SpeedWater:  e.VWater.Mag,
		TrackGround: e.VGround.Angle,
		SpeedGround: e.VGround.Mag,

		WindDir:   e.Wx.Wind.Angle,
		WindSpeed: e.Wx.Wind.Mag,
		WindGust:  e.Wx.WindGust,

		Temp:       e.Wx.Temp,
		Dewpoint:   e.Wx.Dewpoint,
		Pressure:   e.Wx.Pressure,
		Cloud:      e.Wx.Cloud,
		Visibility: e.Wx.Visibility,
		PrecipRate: e.Wx.PrecipRate,
		PrecipType: e.Wx.Cond,

		BoatStatus:        e.BoatState,
		BoatLocation:      e.LocState,
		DistanceTravelled: e.DistanceTravelled,
		Damage:            e.Damage,
		CompassMagDec:     e.MagDec,
		Invisible:         e.Invisible,
	}

	if e.OceanValid {
		row.OceanCurrentDir = ptr(e.Ocean.Current.Angle)
		row.OceanCurrentSpeed = ptr(e.Ocean.Current.Mag)
		row.WaterTemp = ptr(e.Ocean.SurfaceTemp)
		row.Salinity = ptr(e.Ocean.Salinity)
		row.OceanIce = ptr(e.Ocean.Ice)
	}
	if e.WaveValid {
		row.WaveHeight = ptr(e.Wave.Height)
	}

	return row
}

func ptr(v float64) *float64 {
	return &v
}

func (l *Logger) writeCSV(b Batch) {
	if l.csvDir == "" {
		return
	}

	if _, err := os.Stat(l.csvDir); err != nil {
		if os.IsNotExist(err) {
			// Directory removed: CSV logging is switched off.
			return
		}
		l.log.Error().Err(err).Str("dir", l.csvDir).Msg("Cannot stat CSV log directory")
		return
	}

	for i := range b.Entries {
		e := &b.Entries[i]
		path := filepath.Join(l.csvDir, e.BoatName+".csv")
		if err := appendLine(path, CSVLine(e)); err != nil {
			l.log.Error().Err(err).Str("path", path).Msg("Failed to write log entry")
		}
	}

	for _, s := range b.Sights {
		path := filepath.Join(l.csvDir, s.BoatName+"-cs.csv")
		line := fmt.Sprintf("%d,%d,%.3f,%.3f\n", s.Time, s.Sight.Obj, s.Sight.Az, s.Sight.Alt)
		if err := appendLine(path, line); err != nil {
			l.log.Error().Err(err).Str("path", path).Msg("Failed to write sight entry")
		}
	}
}

// CSVLine renders one boat log entry in the documented column order.
// Columns that depend on unavailable ocean or wave data are left blank.
func CSVLine(e *Entry) string {
	currDir, currMag, waterTemp, salinity, ice := "", "", "", "", ""
	if e.OceanValid {
		currDir = fmt.Sprintf("%.1f", e.Ocean.Current.Angle)
		currMag = fmt.Sprintf("%.3f", e.Ocean.Current.Mag)
		waterTemp = fmt.Sprintf("%.1f", e.Ocean.SurfaceTemp)
		salinity = fmt.Sprintf("%.3f", e.Ocean.Salinity)
		ice = fmt.Sprintf("%.0f", e.Ocean.Ice)
	}

	waveHeight := ""
	if e.WaveValid {
		waveHeight = fmt.Sprintf("%.2f", e.Wave.Height)
	}

	invisible := 0
	if e.Invisible {
		invisible = 1
	}

	return fmt.Sprintf("%d,%.6f,%.6f,%.1f,%.3f,%.1f,%.3f,%.1f,%.3f,%s,%s,%s,%.1f,%.1f,%.1f,%.0f,%.0f,%.2f,%d,%d,%d,%s,%s,%.1f,%.3f,%.3f,%s,%.3f,%d\n",
		e.Time,
		e.Pos.Lat,
		e.Pos.Lon,
		e.VWater.Angle,
		e.VWater.Mag,
		e.VGround.Angle,
		e.VGround.Mag,
		e.Wx.Wind.Angle,
		e.Wx.Wind.Mag,
		currDir,
		currMag,
		waterTemp,
		e.Wx.Temp,
		e.Wx.Dewpoint,
		e.Wx.Pressure,
		e.Wx.Cloud,
		e.Wx.Visibility,
		e.Wx.PrecipRate,
		e.Wx.Cond,
		e.BoatState,
		e.LocState,
		salinity,
		ice,
		e.DistanceTravelled,
		e.Damage,
		e.Wx.WindGust,
		waveHeight,
		e.MagDec,
		invisible,
	)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}
