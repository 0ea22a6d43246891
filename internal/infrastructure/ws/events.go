package ws

// Inbound event names. These are the wire contract; clients emit them
// with the JSON payload documented on the matching payload struct.
const (
	EventJoin                = "join"
	EventRegister            = "register"
	EventJoinInstitutionRoom = "joinInstitutionRoom"
	EventNewToken            = "newToken"
	EventStartProcessing     = "startProcessing"
	EventCompleteToken       = "completeToken"
	EventGetProcessingTokens = "getCurrentProcessingTokens"
	EventSendMessage         = "sendMessage"
	EventSendNotification    = "sendNotification"
)

// Outbound event names.
const (
	EventPresenceUpdate          = "presenceUpdate"
	EventTokenUpdated            = "tokenUpdated"
	EventCompletedTokensUpdated  = "completedTokensUpdated"
	EventProcessingTokenUpdated  = "processingTokenUpdated"
	EventCurrentProcessingTokens = "currentProcessingTokens"
	EventReceiveMessage          = "receiveMessage"
	EventReceiveNotification     = "receiveNotification"
)
