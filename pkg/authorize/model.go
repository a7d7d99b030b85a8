package authorize

import (
	"fmt"

	"github.com/casbin/casbin/v2/model"
)

// DefaultModel is the RBAC-with-domains model used when no model file is
// configured. manage covers the five CRUD actions but not grant or revoke.
const DefaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (g(r.sub, p.sub, r.dom) || g2(r.sub, p.sub)) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || keyMatch(r.act, p.act) || (p.act == "manage" && (r.act == "create" || r.act == "read" || r.act == "update" || r.act == "delete" || r.act == "list")))
`

// LoadModel reads the model at path, or DefaultModel when path is empty.
func LoadModel(path string) (model.Model, error) {
	if path == "" {
		return model.NewModelFromString(DefaultModel)
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load casbin model %s: %w", path, err)
	}
	return m, nil
}
