package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the app-wide configuration. Set once by NewConfig at startup.
var Conf *Config

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// PresentConfig groups the presentation-to-video pipeline knobs.
	// MinAudioBytes/MinVideoBytes are empirical thresholds detecting silently
	// failed synthesis/muxing; they are tunable, not format invariants.
	PresentConfig struct {
		UploadDir string

		SofficeBin  string
		PdftoppmBin string
		TTSBin      string
		FFmpegBin   string
		FFprobeBin  string

		SlideWidth  int
		SlideHeight int

		Rate            int
		Voice           string
		SynthTimeout    time.Duration
		MaxNarrationLen int
		MinAudioBytes   int64
		MinVideoBytes   int64

		PaddingSec float64
		FloorSec   float64

		SynthWorkers  int
		EncodeThreads int
		QueueSize     int
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string
		WorkDir  string

		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Present  PresentConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "DesignStudy")
	v.SetDefault("build", "dev")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "designstudy")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "designstudy")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("present.uploadDir", "uploads")
	v.SetDefault("present.sofficeBin", "soffice")
	v.SetDefault("present.pdftoppmBin", "pdftoppm")
	v.SetDefault("present.ttsBin", "espeak-ng")
	v.SetDefault("present.ffmpegBin", "ffmpeg")
	v.SetDefault("present.ffprobeBin", "ffprobe")
	v.SetDefault("present.slideWidth", 1280)
	v.SetDefault("present.slideHeight", 720)
	v.SetDefault("present.rate", 170)
	v.SetDefault("present.voice", "")
	v.SetDefault("present.synthTimeout", 12*time.Second)
	v.SetDefault("present.maxNarrationLen", 100)
	v.SetDefault("present.minAudioBytes", 1024)
	v.SetDefault("present.minVideoBytes", 10*1024)
	v.SetDefault("present.paddingSec", 0.5)
	v.SetDefault("present.floorSec", 2.0)
	v.SetDefault("present.synthWorkers", 2)
	v.SetDefault("present.encodeThreads", 2)
	v.SetDefault("present.queueSize", 32)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Present: PresentConfig{
			UploadDir:       v.GetString("present.uploadDir"),
			SofficeBin:      v.GetString("present.sofficeBin"),
			PdftoppmBin:     v.GetString("present.pdftoppmBin"),
			TTSBin:          v.GetString("present.ttsBin"),
			FFmpegBin:       v.GetString("present.ffmpegBin"),
			FFprobeBin:      v.GetString("present.ffprobeBin"),
			SlideWidth:      v.GetInt("present.slideWidth"),
			SlideHeight:     v.GetInt("present.slideHeight"),
			Rate:            v.GetInt("present.rate"),
			Voice:           v.GetString("present.voice"),
			SynthTimeout:    v.GetDuration("present.synthTimeout"),
			MaxNarrationLen: v.GetInt("present.maxNarrationLen"),
			MinAudioBytes:   v.GetInt64("present.minAudioBytes"),
			MinVideoBytes:   v.GetInt64("present.minVideoBytes"),
			PaddingSec:      v.GetFloat64("present.paddingSec"),
			FloorSec:        v.GetFloat64("present.floorSec"),
			SynthWorkers:    v.GetInt("present.synthWorkers"),
			EncodeThreads:   v.GetInt("present.encodeThreads"),
			QueueSize:       v.GetInt("present.queueSize"),
		},
	}

	Conf = conf
	return conf
}

// Getwd returns the app's root directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(fmt.Errorf("core.Getwd: %v", err))
	}
	return wd
}
