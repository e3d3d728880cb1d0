// Package stdlib installs vecta's standard library builtins beyond `print`
// (spec.md §3.4 names only `print`; this package is this lineage's §11.4
// addition) into the root scope, mirroring the shape of the teacher's
// vmregister/stdlib.go builtin-registration pattern: each entry declares a
// Fun signature via the reactor and binds a *value.Builtin in ScopeStorage.
package stdlib

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"vecta/internal/reactor"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
	"vecta/internal/verrors"
)

// register installs one builtin: its Fun type on the reactor and its Go
// implementation bound in root-scope storage.
func register(sc *scope.Scope, rt *reactor.Reactor, name string, sig *types.Type, fn func([]value.Value) value.Value) {
	d := &scope.Decl{Kind: scope.DeclFun, Name: name, Node: name}
	sc.Declare(d)
	rt.Set(d.Node, "type", sig)
	sc.Bind(d, &value.Builtin{Name: name, Fn: fn})
}

// Install populates sc with vecta's §11.4 standard library. It must run
// after builtin.Install so Int/Float/Bool/String/Void are already declared.
func Install(sc *scope.Scope, rt *reactor.Reactor) {
	installLen(sc, rt)
	installCrypto(sc, rt)
	installDatabase(sc, rt)
	installTime(sc, rt)
}

func installLen(sc *scope.Scope, rt *reactor.Reactor) {
	elem := types.NewGeneric("T")
	sig := types.Fun(types.Int, []*types.Type{types.Array(elem)})
	register(sc, rt, "len", sig, func(args []value.Value) value.Value {
		arr, ok := args[0].(value.Array)
		if !ok {
			verrors.Raise(verrors.Location{}, "len: argument is not array-like")
		}
		return value.Int(arr.Len())
	})
}

func installCrypto(sc *scope.Scope, rt *reactor.Reactor) {
	register(sc, rt, "hash", types.Fun(types.String, []*types.Type{types.String}), func(args []value.Value) value.Value {
		sum := sha256.Sum256([]byte(string(args[0].(value.String))))
		return value.String(hex.EncodeToString(sum[:]))
	})

	register(sc, rt, "hashPassword", types.Fun(types.String, []*types.Type{types.String}), func(args []value.Value) value.Value {
		out, err := bcrypt.GenerateFromPassword([]byte(string(args[0].(value.String))), bcrypt.DefaultCost)
		if err != nil {
			verrors.Raise(verrors.Location{}, "hashPassword: %v", err)
		}
		return value.String(string(out))
	})

	register(sc, rt, "checkPassword", types.Fun(types.Bool, []*types.Type{types.String, types.String}), func(args []value.Value) value.Value {
		plain := string(args[0].(value.String))
		hashed := string(args[1].(value.String))
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
		return value.Bool(err == nil)
	})
}

// dbHandles stores the open *sql.DB instances dbOpen hands back as small
// integer handles, grounded on the teacher's internal/database.go's
// map[string]*sql.DB connection registry.
var (
	dbMu      sync.Mutex
	dbHandles = map[int64]*sql.DB{}
	dbNext    int64
)

func installDatabase(sc *scope.Scope, rt *reactor.Reactor) {
	register(sc, rt, "dbOpen", types.Fun(types.Int, []*types.Type{types.String, types.String}), func(args []value.Value) value.Value {
		driver := string(args[0].(value.String))
		dsn := string(args[1].(value.String))
		db, err := sql.Open(driver, dsn)
		if err != nil {
			verrors.Raise(verrors.Location{}, "dbOpen: %v", err)
		}
		dbMu.Lock()
		dbNext++
		handle := dbNext
		dbHandles[handle] = db
		dbMu.Unlock()
		return value.Int(handle)
	})

	register(sc, rt, "dbExec", types.Fun(types.Int, []*types.Type{types.Int, types.String}), func(args []value.Value) value.Value {
		db := lookupDB(int64(args[0].(value.Int)))
		res, err := db.Exec(string(args[1].(value.String)))
		if err != nil {
			verrors.Raise(verrors.Location{}, "dbExec: %v", err)
		}
		n, _ := res.RowsAffected()
		return value.Int(n)
	})

	register(sc, rt, "dbQuery", types.Fun(types.Mat(types.String), []*types.Type{types.Int, types.String}), func(args []value.Value) value.Value {
		db := lookupDB(int64(args[0].(value.Int)))
		rows, err := db.Query(string(args[1].(value.String)))
		if err != nil {
			verrors.Raise(verrors.Location{}, "dbQuery: %v", err)
		}
		defer rows.Close()
		cols, err := rows.Columns()
		if err != nil {
			verrors.Raise(verrors.Location{}, "dbQuery: %v", err)
		}
		var result []value.Array
		for rows.Next() {
			raw := make([]interface{}, len(cols))
			ptrs := make([]interface{}, len(cols))
			for i := range raw {
				ptrs[i] = &raw[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				verrors.Raise(verrors.Location{}, "dbQuery: %v", err)
			}
			cells := make([]value.Value, len(cols))
			for i, c := range raw {
				cells[i] = value.String(fmt.Sprintf("%v", c))
			}
			result = append(result, value.NewArray(cells))
		}
		return value.NewMatrix(result)
	})

	register(sc, rt, "dbClose", types.Fun(types.Void, []*types.Type{types.Int}), func(args []value.Value) value.Value {
		handle := int64(args[0].(value.Int))
		dbMu.Lock()
		db, ok := dbHandles[handle]
		delete(dbHandles, handle)
		dbMu.Unlock()
		if ok {
			db.Close()
		}
		return value.Null
	})
}

func lookupDB(handle int64) *sql.DB {
	dbMu.Lock()
	defer dbMu.Unlock()
	db, ok := dbHandles[handle]
	if !ok {
		verrors.Raise(verrors.Location{}, "invalid database handle %d", handle)
	}
	return db
}

func installTime(sc *scope.Scope, rt *reactor.Reactor) {
	register(sc, rt, "now", types.Fun(types.String, nil), func(args []value.Value) value.Value {
		return value.String(time.Now().UTC().Format(time.RFC3339))
	})

	register(sc, rt, "uuidNew", types.Fun(types.String, nil), func(args []value.Value) value.Value {
		return value.String(uuid.NewString())
	})
}
