// Package notification implements the notification center the alarm receiver
// posts to.
//
// Notifications live in a channel that must be registered first (registration
// is idempotent). Posting with an ID that is already active replaces the
// previous notification, so the alarm reuses AlarmNotificationID and never
// stacks. A notification flagged FullScreen can ask the center to launch the
// alert surface on its behalf.
package notification
