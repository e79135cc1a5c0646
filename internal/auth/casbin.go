package auth

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// Model is the RBAC model: subjects inherit roles, objects are URL paths
// matched with keyMatch2 and actions are HTTP methods.
const Model = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
`

// NewEnforcer creates and configures a new Casbin enforcer.
// With a SQL driver the policies live in the casbin_rule table of the
// application database; otherwise they are kept in memory and reseeded on
// every start.
func NewEnforcer(driverName, dsn string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, err
	}

	if driverName != "mysql" && driverName != "sqlite3" {
		enforcer, err := casbin.NewEnforcer(m)
		if err != nil {
			return nil, err
		}
		enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
		return enforcer, nil
	}

	adapter := sqlxadapter.NewAdapterFromOptions(&sqlxadapter.AdapterOptions{
		DriverName:     driverName,
		DataSourceName: dsn,
		TableName:      "casbin_rule",
	})
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}

	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	return enforcer, nil
}
