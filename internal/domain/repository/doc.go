// Package repository define los contratos de persistencia del dominio.
//
// Los puertos son independientes del almacenamiento subyacente (PostgreSQL,
// MySQL, SQLite, Redis o memoria). Las implementaciones concretas viven en
// internal/persistence y internal/store/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│           Services / Controllers                    │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│   UserReader, UserWriter, UserSession               │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│  persistence: IdentityMap · Mapper · UnitOfWork     │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┼──────────────┐
//	         ▼              ▼              ▼
//	┌─────────────┐  ┌─────────────┐  ┌─────────────┐
//	│  adapters/  │  │  adapters/  │  │  adapters/  │
//	│  pg · mysql │  │   sqlite    │  │ redis · mem │
//	└─────────────┘  └─────────────┘  └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Las identidades son estructuradas (user.ID), nunca strings crudos
//   - Errores de dominio están en errors.go
package repository
