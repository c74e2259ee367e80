package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr      string `default:"" env:"APP_HOST"`
		Port            int    `default:"8080"  env:"APP_PORT"`
		DefaultRoleName string `default:"Employee" env:"APP_DEFAULT_ROLE"`
		// DecisionLockWaitSec bounds how long a decision waits for another decision on the same request.
		DecisionLockWaitSec int `default:"5" env:"APP_DECISION_LOCK_WAIT_SEC"`
		ExportConcurrency   int `default:"2" env:"APP_EXPORT_CONCURRENCY"`
		BodyLimitMB         int `default:"2" env:"APP_BODY_LIMIT_MB"`
		AttachmentLimitMB   int `default:"50" env:"APP_ATTACHMENT_LIMIT_MB"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"policy-portal" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret string `default:"" env:"AUTH_JWT_SECRET"`
	}
	S3 struct {
		Endpoint        string `default:"127.0.0.1:9000" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
		BucketName      string `default:"policy-portal" env:"S3_BUCKET_NAME"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string `default:"noreply@policy-portal.local" env:"SMTP_FROM"`
	}
	Notification struct {
		BufferSize          int64 `default:"1000" env:"NOTIFICATION_BUFFER_SIZE"`
		RetentionDays       int   `default:"30" env:"NOTIFICATION_RETENTION_DAYS"`
		CleanupIntervalHour int   `default:"6" env:"NOTIFICATION_CLEANUP_INTERVAL_HOUR"`
	}
	ErrNotifyAddr string `default:"" env:"ERR_NOTIFY_ADDR"`
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
