package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/hellouser/internal/util"
)

// ─── HTTP ───

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }

// ─── Dominio ───

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email crea un campo con el email enmascarado (a…@e….com).
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// ─── Persistencia ───

// Adapter nombre del store ("postgres", "sqlite", "memory", ...).
func Adapter(v string) zap.Field { return zap.String("adapter", v) }

// UoW nombre de la unidad de trabajo.
func UoW(v string) zap.Field { return zap.String("uow", v) }

// State estado del ciclo de vida de la unidad de trabajo.
func State(v string) zap.Field { return zap.String("state", v) }

// Outcome resultado de un scope (committed, rolled_back, ...).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Pending cantidad de snapshots pendientes de flush.
func Pending(v int) zap.Field { return zap.Int("pending", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
