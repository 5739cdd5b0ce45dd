package events

// NotifyIncomingRequest tells target that requester wants to connect. Both
// the socket path and the HTTP workflow go through here so the payload
// cannot drift between them.
func NotifyIncomingRequest(pub Publisher, targetUserID string, requester any) {
	pub.Publish(UserRoom(targetUserID), IncomingRequest, requester)
}

// NotifyRequestAccepted tells the original requester that the request was accepted.
func NotifyRequestAccepted(pub Publisher, requesterID string, accepter any) {
	pub.Publish(UserRoom(requesterID), RequestAccepted, accepter)
}

// NotifyNewNotification pings the user to refetch notifications.
func NotifyNewNotification(pub Publisher, userID string) {
	pub.Publish(UserRoom(userID), NewNotification, nil)
}
