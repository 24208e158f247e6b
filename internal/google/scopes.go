package google

// DefaultOAuthScopes are the scopes meetpilot needs:
//   - userinfo: resolve the organizer's name and email
//   - Calendar: read past events, query free/busy, create events
//   - Gmail: send invitations
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/gmail.send",
}
