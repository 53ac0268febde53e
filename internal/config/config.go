package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "AIUTOX_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Calendar Calendar `koanf:"calendar"`
	Database Database `koanf:"db"`
}

type Calendar struct {
	// Timezone used for date arithmetic when the user has none configured.
	Timezone string `koanf:"timezone"`
	// SnapInterval in minutes, 0 disables snapping.
	SnapInterval int `koanf:"snapinterval"`
	// MinDuration in minutes.
	MinDuration  int  `koanf:"minduration"`
	PreserveTime bool `koanf:"preservetime"`
}

func (c Calendar) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c Calendar) MinDurationValue() time.Duration {
	return time.Duration(c.MinDuration) * time.Minute
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Calendar: Calendar{
			Timezone:     "UTC",
			SnapInterval: 15,
			MinDuration:  15,
			PreserveTime: true,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "aiutox",
			Pass:   "",
			Name:   "aiutox",
			Schema: "calendar",
		},
	}
}

// Load layers defaults, the YAML file at path and AIUTOX_* environment variables.
// A .env file in the working directory is read into the environment first.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("could not read .env file: %v", err)
	}

	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	if err := app.validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (a Application) validate() error {
	if a.Calendar.SnapInterval < 0 {
		return fmt.Errorf("calendar.snapinterval must not be negative, got %d", a.Calendar.SnapInterval)
	}
	if a.Calendar.MinDuration <= 0 {
		return fmt.Errorf("calendar.minduration must be positive, got %d", a.Calendar.MinDuration)
	}
	if _, err := a.Calendar.Location(); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	return nil
}
