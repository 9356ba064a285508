package protocol

const (
	ToolNameQueryDatabase      = "query_database"
	ToolNameFindStudent        = "find_student"
	ToolNameRoomOccupants      = "room_occupants"
	ToolNameCheckAvailability  = "check_availability"
	ToolNamePredictOccupancy   = "predict_occupancy"
	ToolNameUpdateRoomCapacity = "update_room_capacity"
)

const (
	ResourceURISchema      = "schema://dormitory"
	ResourceURIStudents    = "data://students"
	ResourceURIRooms       = "data://rooms"
	ResourceURIOccupancy   = "data://occupancy"
	ResourceURIMaintenance = "data://maintenance"
)

const PromptNameHelp = "help_prompt"

const (
	RPCMethodInitialize               = "initialize"
	RPCMethodNotificationsInitialized = "notifications/initialized"
	RPCMethodToolsList                = "tools/list"
	RPCMethodToolsCall                = "tools/call"
	RPCMethodResourcesList            = "resources/list"
	RPCMethodResourcesRead            = "resources/read"
	RPCMethodPromptsList              = "prompts/list"
	RPCMethodPromptsGet               = "prompts/get"
)

const (
	Version = "2025-11-25"

	MCPSessionHeader = "MCP-Session-Id"
)
