package taxonomy

// defaultSkills is the built-in catalogue used when no taxonomy is configured.
var defaultSkills = []Skill{
	{ID: "javascript", Name: "JavaScript", Category: "frontend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"js", "ecmascript", "es6"}, RelatedSkillIDs: []string{"typescript"}},
	{ID: "typescript", Name: "TypeScript", Category: "frontend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"ts"}},
	{ID: "react", Name: "React", Category: "frontend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"reactjs", "react.js"}, RelatedSkillIDs: []string{"javascript", "typescript"}},
	{ID: "vue", Name: "Vue", Category: "frontend", CompetencyArea: "engineering", Aliases: []string{"vuejs", "vue.js"}, RelatedSkillIDs: []string{"javascript"}},
	{ID: "nodejs", Name: "Node.js", Category: "backend", CompetencyArea: "engineering", Aliases: []string{"node", "node.js"}, RelatedSkillIDs: []string{"javascript"}},
	{ID: "go", Name: "Go", Category: "backend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"golang"}},
	{ID: "python", Name: "Python", Category: "backend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"py", "python3"}},
	{ID: "java", Name: "Java", Category: "backend", CompetencyArea: "engineering", IsCore: true, Aliases: []string{"jvm"}},
	{ID: "postgresql", Name: "PostgreSQL", Category: "data", CompetencyArea: "engineering", Aliases: []string{"postgres", "psql", "pg"}, RelatedSkillIDs: []string{"sql"}},
	{ID: "sql", Name: "SQL", Category: "data", CompetencyArea: "engineering", IsCore: true},
	{ID: "kubernetes", Name: "Kubernetes", Category: "devops", CompetencyArea: "infrastructure", Aliases: []string{"k8s"}, RelatedSkillIDs: []string{"docker"}},
	{ID: "docker", Name: "Docker", Category: "devops", CompetencyArea: "infrastructure", Aliases: []string{"containers"}},
	{ID: "machine-learning", Name: "Machine Learning", Category: "data", CompetencyArea: "analytics", Aliases: []string{"ml"}, RelatedSkillIDs: []string{"python"}},
	{ID: "project-management", Name: "Project Management", Category: "management", CompetencyArea: "leadership", Aliases: []string{"pm", "agile", "scrum"}},
	{ID: "leadership", Name: "Leadership", Category: "soft", CompetencyArea: "leadership", Aliases: []string{"team lead", "people management"}},
	{ID: "communication", Name: "Communication", Category: "soft", CompetencyArea: "collaboration", Aliases: []string{"presentation skills"}},
}

// Default returns the built-in skill catalogue.
func Default() *Taxonomy {
	t, err := New(defaultSkills)
	if err != nil {
		panic(err)
	}
	return t
}
