package screen

// SignedInMsg announces a successful login or registration. The app
// reacts by replacing the screen stack with the home screen.
type SignedInMsg struct{}

// SignedOutMsg announces that the session ended, either by an explicit
// logout or a 401/403 that invalidated the stored credentials. The app
// reacts by replacing the screen stack with the login screen, which keeps
// the redirect-to-login transition in exactly one place.
type SignedOutMsg struct{}
