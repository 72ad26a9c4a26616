// Package persistence implementa la capa de consistencia transaccional de
// entidades: Identity Map, Data Mapper y Unit of Work.
//
// Todo es genérico sobre la entidad (E), su identidad (ID), su clave
// secundaria única (K) y el registro de almacenamiento (R). El wiring concreto
// para User vive en persistence/userrepo.
//
// Ciclo de vida de una sesión (una por operación lógica):
//
//	IdentityMap ◄──── ReadRepository   (lecturas sin transacción)
//	     ▲
//	     └─────────── WriteRepository  (staging, flush dentro de la tx)
//	                        ▲
//	                   UnitOfWork.Do   (begin → fn → flush → commit | rollback → clear)
//
// Ningún tipo de este paquete es seguro para uso concurrente: cada sesión
// pertenece a una sola goroutine. La aislación entre sesiones la da el store.
package persistence
