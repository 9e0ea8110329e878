package core

// DefaultCategories is the fixed set seeded on startup.
// Seeding inserts missing names and never overwrites existing rows.
var DefaultCategories = []Category{
	{Name: "Trabajo", Description: "Actividades laborales", Color: "#3B82F6", Icon: "briefcase", IsDefault: true},
	{Name: "Ejercicio", Description: "Actividad física y deporte", Color: "#10B981", Icon: "dumbbell", IsDefault: true},
	{Name: "Familia", Description: "Tiempo con familia", Color: "#F59E0B", Icon: "users", IsDefault: true},
	{Name: "Estudio", Description: "Aprendizaje y formación", Color: "#8B5CF6", Icon: "book", IsDefault: true},
	{Name: "Ocio", Description: "Entretenimiento y relajación", Color: "#EC4899", Icon: "gamepad", IsDefault: true},
	{Name: "Social", Description: "Actividades sociales", Color: "#06B6D4", Icon: "chat", IsDefault: true},
	{Name: "Salud", Description: "Cuidado de la salud", Color: "#EF4444", Icon: "heart", IsDefault: true},
	{Name: "Hogar", Description: "Tareas del hogar", Color: "#84CC16", Icon: "home", IsDefault: true},
	{Name: "Proyectos", Description: "Proyectos personales", Color: "#F97316", Icon: "rocket", IsDefault: true},
	{Name: "Otro", Description: "Otras actividades", Color: "#6B7280", Icon: "dots", IsDefault: true},
}
