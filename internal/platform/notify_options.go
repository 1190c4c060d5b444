package platform

// AppName identifies the application to notification daemons.
const AppName = "AnnoCanvas"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, is an image file shown with the notification
	// where the platform supports it.
	IconPath string
	// TimeoutMillis is how long the notification stays up. Zero lets the
	// platform decide.
	TimeoutMillis int32
}
