package constants

import "time"

const (
	AppName            = "renraku"
	DefaultKeyringUser = "classnavi-token"
	DefaultConfigPath  = "~/.config/renraku/renraku.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DefaultTimezone is used until the operator configures one at init
	DefaultTimezone = "Asia/Tokyo"

	// SendEmailFlag marks a dashboard row as eligible for the work queue
	SendEmailFlag = "SEND EMAIL"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "renraku-"
	BackupFileSuffix = ".db"

	// ClassNavi constants
	ClassNaviTokenEnv    = "CLASSNAVI_TOKEN"
	ClassNaviDefaultWait = 1500 * time.Millisecond
)
