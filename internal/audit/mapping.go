package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides: these routes get domain-specific action names instead of
// the generic method-derived verb.
var routeOverrides = map[string]ActionResource{
	"POST /api/auth/register":                           {Action: "register", Resource: "auth"},
	"POST /api/auth/login":                              {Action: "login", Resource: "auth"},
	"POST /api/auth/logout":                             {Action: "logout", Resource: "auth"},
	"POST /api/channels/{channelID}/members":            {Action: "member_added", Resource: "channel"},
	"DELETE /api/channels/{channelID}/members/{userID}": {Action: "member_removed", Resource: "channel"},
	"POST /api/invitations/{invitationID}/accept":       {Action: "invitation_accepted", Resource: "invitation"},
	"POST /api/invitations/{invitationID}/decline":      {Action: "invitation_declined", Resource: "invitation"},
	"PUT /api/users/me/username":                        {Action: "username_changed", Resource: "user"},
}

// ParseRoute returns action and resource for an HTTP method and chi route
// pattern (e.g. GET /api/channels/{channelID}/messages). Action is a verb:
// get, create, update, delete, or a domain-specific override. Resource is the
// last static path segment, singular (messages -> message).
func ParseRoute(method, pattern string) ActionResource {
	if ar, ok := routeOverrides[method+" "+pattern]; ok {
		return ar
	}
	resource := "unknown"
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" || seg == "api" || strings.HasPrefix(seg, "{") {
			continue
		}
		resource = singular(seg)
	}
	return ActionResource{Action: methodToAction(method), Resource: resource}
}

func singular(s string) string {
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}

func methodToAction(method string) string {
	switch method {
	case "GET", "HEAD":
		return "get"
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
