package registrytest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/parcelreg/parcel/internal/registry"
)

// NewServer exposes a Fake over the registry's HTTP JSON API, mirroring the
// endpoints internal/client speaks. Errors are returned in the
// {"error": {...}} envelope with the status implied by their kind.
func NewServer(f *Fake) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		var reg registry.Registration
		if !readJSON(w, r, &reg) {
			return
		}
		reply(w, http.StatusCreated)(f.Register(r.Context(), reg))
	})

	mux.HandleFunc("POST /v1/accounts/verify", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		reply(w, http.StatusOK)(f.Verify(r.Context(), body.Token))
	})

	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		reply(w, http.StatusOK)(f.Login(r.Context(), body.Identifier, body.Password))
	})

	mux.HandleFunc("DELETE /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		replyEmpty(w, f.Logout(r.Context(), cred(r)))
	})

	mux.HandleFunc("GET /v1/account", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK)(f.Show(r.Context(), cred(r)))
	})

	mux.HandleFunc("PATCH /v1/account", func(w http.ResponseWriter, r *http.Request) {
		var upd registry.ProfileUpdate
		if !readJSON(w, r, &upd) {
			return
		}
		reply(w, http.StatusOK)(f.UpdateProfile(r.Context(), cred(r), upd))
	})

	mux.HandleFunc("POST /v1/account/password", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		replyEmpty(w, f.ChangePassword(r.Context(), cred(r), body.OldPassword, body.NewPassword))
	})

	mux.HandleFunc("POST /v1/account/tokens", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		token, err := f.IssueToken(r.Context(), cred(r), body.Password)
		reply(w, http.StatusCreated)(map[string]string{"token": token}, err)
	})

	mux.HandleFunc("DELETE /v1/account", func(w http.ResponseWriter, r *http.Request) {
		replyEmpty(w, f.DestroyAccount(r.Context(), cred(r)))
	})

	mux.HandleFunc("POST /v1/orgs", func(w http.ResponseWriter, r *http.Request) {
		var spec registry.OrgSpec
		if !readJSON(w, r, &spec) {
			return
		}
		reply(w, http.StatusCreated)(f.CreateOrg(r.Context(), cred(r), spec))
	})

	mux.HandleFunc("GET /v1/orgs", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK)(f.ListOrgs(r.Context(), cred(r)))
	})

	mux.HandleFunc("GET /v1/orgs/{org}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK)(f.GetOrg(r.Context(), cred(r), r.PathValue("org")))
	})

	mux.HandleFunc("PATCH /v1/orgs/{org}", func(w http.ResponseWriter, r *http.Request) {
		var upd registry.OrgUpdate
		if !readJSON(w, r, &upd) {
			return
		}
		reply(w, http.StatusOK)(f.UpdateOrg(r.Context(), cred(r), r.PathValue("org"), upd))
	})

	mux.HandleFunc("DELETE /v1/orgs/{org}", func(w http.ResponseWriter, r *http.Request) {
		replyEmpty(w, f.DestroyOrg(r.Context(), cred(r), r.PathValue("org")))
	})

	mux.HandleFunc("POST /v1/orgs/{org}/owners", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		replyEmpty(w, f.AddOwner(r.Context(), cred(r), r.PathValue("org"), body.Username))
	})

	mux.HandleFunc("DELETE /v1/orgs/{org}/owners/{username}", func(w http.ResponseWriter, r *http.Request) {
		replyEmpty(w, f.RemoveOwner(r.Context(), cred(r), r.PathValue("org"), r.PathValue("username")))
	})

	mux.HandleFunc("POST /v1/orgs/{org}/teams", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		ref := registry.TeamRef{Org: r.PathValue("org"), Team: body.Name}
		reply(w, http.StatusCreated)(f.CreateTeam(r.Context(), cred(r), ref, body.Description))
	})

	mux.HandleFunc("GET /v1/orgs/{org}/teams", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK)(f.ListTeams(r.Context(), cred(r), r.PathValue("org")))
	})

	mux.HandleFunc("PATCH /v1/orgs/{org}/teams/{team}", func(w http.ResponseWriter, r *http.Request) {
		var upd registry.TeamUpdate
		if !readJSON(w, r, &upd) {
			return
		}
		ref := registry.TeamRef{Org: r.PathValue("org"), Team: r.PathValue("team")}
		reply(w, http.StatusOK)(f.UpdateTeam(r.Context(), cred(r), ref, upd))
	})

	mux.HandleFunc("DELETE /v1/orgs/{org}/teams/{team}", func(w http.ResponseWriter, r *http.Request) {
		ref := registry.TeamRef{Org: r.PathValue("org"), Team: r.PathValue("team")}
		replyEmpty(w, f.DestroyTeam(r.Context(), cred(r), ref))
	})

	mux.HandleFunc("POST /v1/orgs/{org}/teams/{team}/members", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		ref := registry.TeamRef{Org: r.PathValue("org"), Team: r.PathValue("team")}
		replyEmpty(w, f.AddMember(r.Context(), cred(r), ref, body.Username))
	})

	mux.HandleFunc("DELETE /v1/orgs/{org}/teams/{team}/members/{username}", func(w http.ResponseWriter, r *http.Request) {
		ref := registry.TeamRef{Org: r.PathValue("org"), Team: r.PathValue("team")}
		replyEmpty(w, f.RemoveMember(r.Context(), cred(r), ref, r.PathValue("username")))
	})

	mux.HandleFunc("POST /v1/packages", func(w http.ResponseWriter, r *http.Request) {
		var pkg registry.PackageUpload
		if !readJSON(w, r, &pkg) {
			return
		}
		reply(w, http.StatusCreated)(f.PublishPackage(r.Context(), cred(r), pkg))
	})

	mux.HandleFunc("DELETE /v1/packages/{name}", func(w http.ResponseWriter, r *http.Request) {
		replyEmpty(w, f.UnpublishPackage(r.Context(), cred(r), r.PathValue("name")))
	})

	mux.HandleFunc("GET /v1/resources", func(w http.ResponseWriter, r *http.Request) {
		owner := registry.ResourceOwner{
			Account: r.URL.Query().Get("account"),
			Org:     r.URL.Query().Get("org"),
		}
		reply(w, http.StatusOK)(f.LinkedResources(r.Context(), cred(r), owner))
	})

	return mux
}

func cred(r *http.Request) registry.Credential {
	auth := r.Header.Get("Authorization")
	return registry.Credential(strings.TrimPrefix(auth, "Bearer "))
}

func readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, registry.Errorf(registry.KindValidation, "invalid request body: %v", err))
		return false
	}
	return true
}

// reply returns a closure so handlers can pass a (value, error) call result
// straight through.
func reply(w http.ResponseWriter, status int) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func replyEmpty(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	e, ok := registry.AsError(err)
	if !ok {
		e = registry.Errorf(registry.KindTransport, "%v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForKind(e.Kind))
	_ = json.NewEncoder(w).Encode(map[string]*registry.Error{"error": e})
}

func statusForKind(kind registry.Kind) int {
	switch kind {
	case registry.KindValidation:
		return http.StatusBadRequest
	case registry.KindAuthentication:
		return http.StatusUnauthorized
	case registry.KindAuthorization:
		return http.StatusForbidden
	case registry.KindNotFound:
		return http.StatusNotFound
	case registry.KindResourceConflict:
		return http.StatusConflict
	case registry.KindInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
