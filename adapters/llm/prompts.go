package llm

import "fmt"

const resumeSystemPrompt = `You are a resume parser. Read the resume and answer with ONLY valid JSON in exactly this shape:
{
  "name": "Full Name",
  "title": "Job Title/Position",
  "summary": "Professional summary or objective",
  "skills": ["skill1", "skill2", "skill3"],
  "experience": [
    {
      "company": "Company Name",
      "role": "Job Title",
      "years": "2020 - Present",
      "details": "Responsibilities and achievements"
    }
  ],
  "projects": [
    {
      "name": "Project Name",
      "url": "https://github.com/user/project",
      "description": "Project description"
    }
  ],
  "contactLinks": [
    {"type": "Email", "url": "mailto:email@example.com"},
    {"type": "LinkedIn", "url": "https://linkedin.com/in/username"}
  ],
  "education": [
    {
      "institution": "University Name",
      "degree": "Degree Name",
      "year": "2020"
    }
  ]
}

Return ONLY the JSON, no other text.`

func resumeUserPrompt(text string) string {
	return fmt.Sprintf("Parse this resume text and extract the information: %s", text)
}
