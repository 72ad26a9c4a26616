// Package logger provee un logger Zap singleton con scoping por contexto.
//
//   - Singleton: una instancia global inicializada con Init() (o Set() en tests).
//   - Context scoping: cada request o unidad de trabajo lleva su propio logger
//     con campos adicionales (request_id, uow, adapter) sin crear un nuevo core.
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//
// Inicialización (una vez en main):
//
//	if err := logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level}); err != nil {
//	    logger.L().Warn("invalid log config", logger.Err(err))
//	}
//	defer logger.Sync()
//
// En services y repositorios:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.create"))
//	log.Info("user created", logger.UserID(id))
package logger
