// Package events defines the realtime event contract shared by the hub,
// the chat service and the connection-request workflow.
package events

import "campus-messaging/internal/models"

// Inbound (client -> server) event names.
const (
	JoinUserRoom      = "join_user_room"
	TypingStart       = "typing_start"
	TypingStop        = "typing_stop"
	RequestConnection = "request_connection"
	AcceptConnection  = "accept_connection"
	EndChat           = "end_chat"
	JoinGroup         = "join_group"
	LeaveGroup        = "leave_group"
)

// Outbound (server -> client) event names.
const (
	UserOnline              = "user_online"
	UserOffline             = "user_offline"
	UserTyping              = "user_typing"
	IncomingRequest         = "incoming_request"
	RequestAccepted         = "request_accepted"
	ChatEnded               = "chat_ended"
	ReceivePrivateMessage   = "receive_private_message"
	MessageSentConfirmation = "message_sent_confirmation"
	NewNotification         = "new_notification"
)

// Publisher is the one-way notification capability. Publish never reports
// delivery; a room without subscribers drops the event.
type Publisher interface {
	Publish(room, event string, payload any)
}

// UserRoom names the private room of a user.
func UserRoom(userID string) string {
	return "user_" + userID
}

// GroupRoom names the room of a community group.
func GroupRoom(groupID string) string {
	return "group_" + groupID
}

// Party identifies the requester or accepter of a connection request.
type Party struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type TypingStartPayload struct {
	TargetUserID string `json:"targetUserId"`
	TyperName    string `json:"typerName"`
}

type TypingStopPayload struct {
	TargetUserID string `json:"targetUserId"`
}

type RequestConnectionPayload struct {
	TargetUserID string `json:"targetUserId"`
	Requester    Party  `json:"requester"`
}

type AcceptConnectionPayload struct {
	TargetUserID string `json:"targetUserId"`
	Accepter     Party  `json:"accepter"`
}

type EndChatPayload struct {
	TargetUserID string `json:"targetUserId"`
	EndedBy      string `json:"endedBy"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId,omitempty"`
}

type TypingPayload struct {
	TyperName string `json:"typerName,omitempty"`
	IsTyping  bool   `json:"isTyping"`
}

type ChatEndedPayload struct {
	EndedBy string `json:"endedBy"`
}

// AcceptedPayload is what the HTTP workflow sends with request_accepted.
type AcceptedPayload struct {
	AcceptingUserID   string `json:"acceptingUserId"`
	AcceptingUserName string `json:"acceptingUserName"`
}

// DeliveredMessage is the receive_private_message payload: the stored row
// plus the sender's display name.
type DeliveredMessage struct {
	models.PrivateMessage
	SenderName string `json:"senderName"`
}
