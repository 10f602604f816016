package config

// ConfigFileNames are the recognized project config names, in lookup order.
var ConfigFileNames = []string{"luabind.yaml", "luabind.yml", "luabind.toml"}

// Runtime-facing names used by generated code
const (
	// RootHandle is the registration function's state parameter. The global
	// namespace binds directly on it.
	RootHandle = "lua"

	// GlobalNamespace is the sentinel namespace path for unqualified records.
	GlobalNamespace = "global"

	// NamespaceSeparator qualifies native names ("game::Player").
	NamespaceSeparator = "::"

	// ArgumentBudget is the most positional arguments a single
	// registration call may carry.
	ArgumentBudget = 20

	RuntimeInclude = "sol/sol.hpp"
	StateType      = "sol::state_view"
)

// Defaults
const (
	DefaultOutputDir   = "generated"
	DefaultCacheDir    = ".luabind/cache"
	DefaultIndentWidth = 4
	MaxIndentWidth     = 16
	OutputFileSuffix   = "_bindings.cpp"
)

// Record attribute keys recognized by the engine
const (
	AttrAlias     = "alias"
	AttrSetter    = "setter"
	AttrNamespace = "namespace"
	AttrReadOnly  = "readonly"
	AttrReadWrite = "readwrite"
	AttrAbstract  = "abstract"
	AttrStatic    = "static"
	AttrSingleton = "singleton"
	AttrExported  = "exported"
	AttrDeleted   = "deleted"
	AttrAccess    = "access"
	AttrContainer = "container"
)

// SingletonAccessor is bound automatically on singleton classes.
const SingletonAccessor = "getInstance"
