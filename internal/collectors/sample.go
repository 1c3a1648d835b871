package collectors

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/garnizeh/jobpulse/pkg/models"
)

// SampleCollector generates realistic synthetic postings so the whole system
// can run without access to live job boards.
type SampleCollector struct {
	num int
	rng *rand.Rand
}

func NewSampleCollector(num int) *SampleCollector {
	return &SampleCollector{num: num, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (c *SampleCollector) SourceName() string { return "sample_generator" }

func (c *SampleCollector) Collect(_ context.Context) ([]*models.JobRecord, error) {
	jobs := make([]*models.JobRecord, 0, c.num)
	for i := 0; i < c.num; i++ {
		jobs = append(jobs, c.generate())
	}
	return jobs, nil
}

type sampleTemplate struct {
	title       string
	skills      []string
	salaryMin   float64
	salaryMax   float64
	description string
}

var sampleCompanies = []struct {
	name     string
	location string
}{
	{"Google", "Mountain View, CA"}, {"Meta", "Menlo Park, CA"},
	{"Amazon", "Seattle, WA"}, {"Microsoft", "Redmond, WA"},
	{"Apple", "Cupertino, CA"}, {"Netflix", "Los Gatos, CA"},
	{"Stripe", "San Francisco, CA"}, {"Airbnb", "San Francisco, CA"},
	{"Uber", "San Francisco, CA"}, {"Spotify", "New York, NY"},
	{"Adobe", "San Jose, CA"}, {"Salesforce", "San Francisco, CA"},
	{"LinkedIn", "Sunnyvale, CA"}, {"Snowflake", "San Mateo, CA"},
	{"Databricks", "San Francisco, CA"}, {"OpenAI", "San Francisco, CA"},
	{"Anthropic", "San Francisco, CA"}, {"Nvidia", "Santa Clara, CA"},
	{"Intel", "Santa Clara, CA"}, {"IBM", "New York, NY"},
	{"Oracle", "Austin, TX"}, {"Coinbase", "San Francisco, CA"},
	{"Plaid", "San Francisco, CA"}, {"Figma", "San Francisco, CA"},
	{"Notion", "San Francisco, CA"}, {"Slack", "San Francisco, CA"},
	{"Zoom", "San Jose, CA"}, {"Shopify", "Remote"},
}

var sampleTemplates = []sampleTemplate{
	{
		title:     "Data Engineer",
		skills:    []string{"python", "sql", "aws", "spark", "airflow", "docker", "kafka", "etl"},
		salaryMin: 120000, salaryMax: 200000,
		description: `Join our data team to build scalable data pipelines.

Responsibilities:
- Design and implement ETL pipelines processing terabytes of data
- Build real-time streaming systems using Kafka
- Optimize data warehouse performance

Requirements:
- %d+ years of experience in data engineering
- Strong Python and SQL skills
- Experience with %s cloud services
- Knowledge of %s and %s`,
	},
	{
		title:     "Machine Learning Engineer",
		skills:    []string{"python", "tensorflow", "pytorch", "mlops", "docker", "kubernetes", "aws"},
		salaryMin: 140000, salaryMax: 220000,
		description: `Help us build the next generation of AI systems.

Responsibilities:
- Develop and deploy ML models at scale
- Build MLOps pipelines for model training and serving

Requirements:
- %d+ years of ML engineering experience
- Proficiency in Python and deep learning frameworks
- Experience with %s and containerization
- Knowledge of %s and %s`,
	},
	{
		title:     "AI Engineer",
		skills:    []string{"python", "langchain", "llm", "rag", "openai", "anthropic", "vector databases"},
		salaryMin: 150000, salaryMax: 250000,
		description: `Build cutting-edge AI applications using LLMs.

Responsibilities:
- Design and implement RAG systems
- Integrate LLMs into production applications

Requirements:
- %d+ years of experience with AI/ML
- Experience with LangChain, vector databases and %s
- Understanding of embeddings, %s and %s`,
	},
	{
		title:     "Data Scientist",
		skills:    []string{"python", "sql", "statistics", "machine learning", "pandas", "scikit-learn"},
		salaryMin: 110000, salaryMax: 180000,
		description: `Use data to drive business decisions.

Responsibilities:
- Analyze large datasets to find insights
- Build predictive models and design A/B tests

Requirements:
- %d+ years in data science
- Strong Python and SQL skills, %s experience
- Familiarity with %s and %s`,
	},
	{
		title:     "Backend Engineer",
		skills:    []string{"python", "java", "api", "postgresql", "redis", "docker", "kubernetes"},
		salaryMin: 130000, salaryMax: 200000,
		description: `Build robust backend systems that power our products.

Responsibilities:
- Design and implement scalable APIs
- Build microservices architecture

Requirements:
- %d+ years of backend development
- Experience with %s cloud infrastructure
- Knowledge of %s and %s`,
	},
	{
		title:     "Full Stack Engineer",
		skills:    []string{"javascript", "react", "node.js", "typescript", "postgresql", "aws"},
		salaryMin: 120000, salaryMax: 190000,
		description: `Build end-to-end features that users love.

Responsibilities:
- Develop frontend and backend features
- Design and implement APIs

Requirements:
- %d+ years of full stack experience
- Strong JavaScript/TypeScript skills on %s
- Familiarity with %s and %s`,
	},
	{
		title:     "DevOps Engineer",
		skills:    []string{"aws", "terraform", "docker", "kubernetes", "ci/cd", "jenkins", "linux"},
		salaryMin: 125000, salaryMax: 195000,
		description: `Build and maintain our cloud infrastructure.

Responsibilities:
- Design and manage cloud infrastructure
- Implement CI/CD pipelines

Requirements:
- %d+ years in DevOps/SRE
- Strong experience with %s
- Proficiency with %s and %s`,
	},
	{
		title:     "Analytics Engineer",
		skills:    []string{"sql", "dbt", "python", "snowflake", "tableau", "data modeling"},
		salaryMin: 115000, salaryMax: 175000,
		description: `Transform raw data into actionable insights.

Responsibilities:
- Build and maintain data models
- Create dbt transformations

Requirements:
- %d+ years in analytics/BI
- Expert SQL skills, %s experience
- Knowledge of %s and %s`,
	},
}

var (
	sampleClouds = []string{"AWS", "GCP", "Azure"}
	sampleTools  = []string{"Spark", "Airflow", "Kafka", "Flink", "dbt", "Snowflake", "Databricks"}

	levelYears = map[string]int{
		models.LevelEntry: 1, models.LevelMid: 3, models.LevelSenior: 5,
		models.LevelLead: 7, models.LevelPrincipal: 10,
	}
	levelMultiplier = map[string]float64{
		models.LevelEntry: 0.7, models.LevelMid: 1.0, models.LevelSenior: 1.2,
		models.LevelLead: 1.4, models.LevelPrincipal: 1.6,
	}
)

func (c *SampleCollector) generate() *models.JobRecord {
	tmpl := sampleTemplates[c.rng.Intn(len(sampleTemplates))]
	company := sampleCompanies[c.rng.Intn(len(sampleCompanies))]

	level := models.ExperienceLevels[c.rng.Intn(len(models.ExperienceLevels))]
	title := tmpl.title
	if level != models.LevelMid {
		title = level + " " + title
	}

	isRemote := c.rng.Float64() < 0.3
	location := company.location
	if isRemote {
		variants := []string{"Remote", "Remote - US", "Remote / " + company.location}
		location = variants[c.rng.Intn(len(variants))]
	}

	mult := levelMultiplier[level]
	salaryMin := tmpl.salaryMin * mult * c.uniform(0.9, 1.1)
	salaryMax := tmpl.salaryMax * mult * c.uniform(0.9, 1.1)

	description := fmt.Sprintf(tmpl.description,
		levelYears[level],
		sampleClouds[c.rng.Intn(len(sampleClouds))],
		sampleTools[c.rng.Intn(len(sampleTools))],
		sampleTools[c.rng.Intn(len(sampleTools))])

	posted := time.Now().AddDate(0, 0, -c.rng.Intn(31))

	j := models.NewJobRecord(title, company.name, location, description)
	j.SalaryMin = &salaryMin
	j.SalaryMax = &salaryMax
	j.ExperienceLevel = level
	j.Remote = isRemote
	j.Skills = append([]string(nil), tmpl.skills...)
	j.Source = c.SourceName()
	j.PostedDate = &posted
	j.ExtractSkills()
	return j
}

func (c *SampleCollector) uniform(lo, hi float64) float64 {
	return lo + c.rng.Float64()*(hi-lo)
}
