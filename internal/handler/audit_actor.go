package handler

import (
	"net/http"

	"go-forum/internal/middleware"
	"go-forum/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		actor.Username = identity.Username
	}

	return actor
}
