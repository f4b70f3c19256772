package exitcode

// Числовые значения кодов выхода зафиксированы: внешние скрипты
// проверяют их напрямую, менять значения нельзя.
const (
	OK                    = 0
	Usage                 = 1
	MissingArgument       = 2
	ConfigNotFound        = 3
	MissingServerName     = 4
	MissingServerAdmin    = 5
	MissingAMIType        = 6
	MissingProjectName    = 7
	MissingPythonVersion  = 8
	UnknownAMIType        = 9
	SettingsNoEngine      = 10
	SettingsNoName        = 11
	SettingsNoUser        = 12
	SettingsNoPassword    = 13
	UnknownDatabaseEngine = 14
	UnsupportedReset      = 15
	UnsupportedCreate     = 16
)
