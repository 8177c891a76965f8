package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Timezone string   `koanf:"timezone"`
	Telegram Telegram `koanf:"telegram"`
	Google   Google   `koanf:"google"`
	Reminder Reminder `koanf:"reminder"`
	Digest   Digest   `koanf:"digest"`
}

type Telegram struct {
	Token string `koanf:"token"`
	// ChannelId is the chat that receives reminders and digests.
	ChannelId int64 `koanf:"channelid"`
}

type Google struct {
	CredentialsFile string `koanf:"credentialsfile"`
	DelegatedUser   string `koanf:"delegateduser"`
	CalendarId      string `koanf:"calendarid"`
	// WebUrl, when set, is linked at the bottom of bot replies.
	WebUrl string `koanf:"weburl"`
}

type Reminder struct {
	LeadTime     time.Duration `koanf:"leadtime"`
	PollInterval time.Duration `koanf:"pollinterval"`
	Slop         time.Duration `koanf:"slop"`
	Retention    time.Duration `koanf:"retention"`
	FetchTimeout time.Duration `koanf:"fetchtimeout"`
}

type Digest struct {
	Enabled bool   `koanf:"enabled"`
	SendAt  string `koanf:"sendat"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Timezone: "Asia/Tokyo",
		Google: Google{
			CredentialsFile: "service-account-key.json",
			CalendarId:      "primary",
		},
		Reminder: Reminder{
			LeadTime:     10 * time.Minute,
			PollInterval: time.Minute,
			Slop:         2 * time.Minute,
			Retention:    3 * time.Hour,
			FetchTimeout: 30 * time.Second,
		},
		Digest: Digest{
			Enabled: false,
			SendAt:  "08:00",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CALBOT_",
		TransformFunc: func(k, v string) (string, any) {
			// CALBOT_TELEGRAM_TOKEN -> telegram.token
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CALBOT_")), "_", ".")
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

	return app, nil
}
