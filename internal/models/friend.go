package models

// FriendStatusAccepted marks a friends row that allows invites. Rows written
// by the account API may also be 'pending'.
const FriendStatusAccepted = "accepted"
