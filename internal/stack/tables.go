package stack

// Categories assigned to detected technologies.
const (
	CategoryLanguage  = "language"
	CategoryFramework = "framework"
	CategoryLibrary   = "library"
	CategoryStyling   = "styling"
	CategoryDatabase  = "database"
	CategoryTesting   = "testing"
)

// known maps a package identifier in a manifest to a stack item name.
type known struct {
	pkg      string
	name     string
	category string
}

// npmPackages is checked in order against dependencies and devDependencies.
var npmPackages = []known{
	{"typescript", "typescript", CategoryLanguage},
	{"next", "next", CategoryFramework},
	{"react", "react", CategoryLibrary},
	{"vue", "vue", CategoryFramework},
	{"nuxt", "nuxt", CategoryFramework},
	{"svelte", "svelte", CategoryFramework},
	{"@sveltejs/kit", "sveltekit", CategoryFramework},
	{"@angular/core", "angular", CategoryFramework},
	{"express", "express", CategoryFramework},
	{"@nestjs/core", "nestjs", CategoryFramework},
	{"fastify", "fastify", CategoryFramework},
	{"hono", "hono", CategoryFramework},
	{"prisma", "prisma", CategoryDatabase},
	{"@prisma/client", "prisma", CategoryDatabase},
	{"drizzle-orm", "drizzle", CategoryDatabase},
	{"mongoose", "mongoose", CategoryDatabase},
	{"tailwindcss", "tailwindcss", CategoryStyling},
	{"styled-components", "styled-components", CategoryStyling},
	{"zod", "zod", CategoryLibrary},
	{"@tanstack/react-query", "react-query", CategoryLibrary},
	{"@reduxjs/toolkit", "redux", CategoryLibrary},
	{"redux", "redux", CategoryLibrary},
	{"graphql", "graphql", CategoryLibrary},
	{"vitest", "vitest", CategoryTesting},
	{"jest", "jest", CategoryTesting},
	{"@playwright/test", "playwright", CategoryTesting},
	{"cypress", "cypress", CategoryTesting},
}

// goModules match a required module path exactly or with a /vN suffix.
var goModules = []known{
	{"github.com/gin-gonic/gin", "gin", CategoryFramework},
	{"github.com/labstack/echo", "echo", CategoryFramework},
	{"github.com/gofiber/fiber", "fiber", CategoryFramework},
	{"github.com/go-chi/chi", "chi", CategoryFramework},
	{"google.golang.org/grpc", "grpc", CategoryFramework},
	{"github.com/spf13/cobra", "cobra", CategoryLibrary},
	{"gorm.io/gorm", "gorm", CategoryDatabase},
	{"entgo.io/ent", "ent", CategoryDatabase},
	{"github.com/jackc/pgx", "pgx", CategoryDatabase},
	{"github.com/stretchr/testify", "testify", CategoryTesting},
}

// crates are matched against [dependencies] and [dev-dependencies].
var crates = []known{
	{"tokio", "tokio", CategoryLibrary},
	{"axum", "axum", CategoryFramework},
	{"actix-web", "actix-web", CategoryFramework},
	{"rocket", "rocket", CategoryFramework},
	{"serde", "serde", CategoryLibrary},
	{"sqlx", "sqlx", CategoryDatabase},
	{"diesel", "diesel", CategoryDatabase},
}

// pythonPackages are matched case-insensitively against normalized names.
var pythonPackages = []known{
	{"django", "django", CategoryFramework},
	{"fastapi", "fastapi", CategoryFramework},
	{"flask", "flask", CategoryFramework},
	{"pydantic", "pydantic", CategoryLibrary},
	{"sqlalchemy", "sqlalchemy", CategoryDatabase},
	{"pytest", "pytest", CategoryTesting},
}
