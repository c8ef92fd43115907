package constants

import "time"

const (
	AppName            = "punchout"
	DefaultKeyringUser = "master-key"
	DefaultConfigPath  = "~/.config/punchout/punchout.db"
	DefaultService     = "timesheet"
	Version            = "v0.3.1"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ClockFormat is the HH:MM format accepted on the CLI for start/end times
	ClockFormat = "15:04"

	// Environment overrides
	EnvDBPath    = "PUNCHOUT_DB"
	EnvMasterKey = "PUNCHOUT_MASTER_KEY"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "punchout-"
	BackupFileSuffix = ".db"

	// Entry time bounds, in minutes since midnight. Start and end must also
	// land on a quarter-hour boundary.
	SlotMinutes    = 15
	MinStartMinute = 0
	MaxStartMinute = 1439
	MinEndMinute   = 1
	MaxEndMinute   = 1400

	// Session constants
	SessionTokenBytes    = 32
	PersistentSessionTTL = 30 * 24 * time.Hour
)
