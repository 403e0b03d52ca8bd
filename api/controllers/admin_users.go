package controllers

import (
	"net/http"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/internal/users"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type userPageResponse struct {
	Items []users.UserDTO `json:"items"`
	Total int64           `json:"total"`
}

// AdminListUsers returns registered customers, newest first.
func AdminListUsers(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		limit, offset, ok := pageParams(w, r, logg)
		if !ok {
			return
		}
		list, total, err := repo.List(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users"))
			return
		}

		page := userPageResponse{
			Items: make([]users.UserDTO, 0, len(list)),
			Total: total,
		}
		for i := range list {
			page.Items = append(page.Items, *users.FromModel(&list[i]))
		}
		responses.WriteSuccess(w, page)
	}
}
