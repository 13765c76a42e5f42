package services

import "serenity/internal/models"

type sampleArticle struct {
	title, content, category, author string
}

var sampleArticles = []sampleArticle{
	{
		title:    "Understanding Anxiety: A Gentle Guide",
		content:  "Anxiety is a natural response to stress, but when it becomes overwhelming, it can impact our daily lives. Learning to recognize the signs and developing healthy coping strategies can make a significant difference. Remember, seeking help is a sign of strength, not weakness.",
		category: "Mental Health",
		author:   "Dr. Sarah Chen",
	},
	{
		title:    "The Power of Mindful Breathing",
		content:  "Breathing is something we do automatically, but when we bring conscious attention to our breath, it becomes a powerful tool for relaxation and stress relief. Try the 4-7-8 technique: inhale for 4 counts, hold for 7, exhale for 8. This simple practice can help calm your nervous system.",
		category: "Mindfulness",
		author:   "Marcus Thompson",
	},
	{
		title:    "Building Emotional Resilience",
		content:  "Emotional resilience is our ability to bounce back from difficult experiences. It's not about avoiding challenges, but developing the skills to navigate them with grace. Key practices include self-compassion, maintaining perspective, and building strong support networks.",
		category: "Personal Growth",
		author:   "Dr. Maya Patel",
	},
	{
		title:    "The Science of Sleep and Mental Health",
		content:  "Quality sleep is fundamental to mental well-being. During sleep, our brains process emotions and consolidate memories. Creating a consistent sleep routine, limiting screen time before bed, and creating a calm environment can significantly improve both sleep quality and mental health.",
		category: "Wellness",
		author:   "Dr. James Wilson",
	},
	{
		title:    "Cognitive Behavioral Techniques for Daily Life",
		content:  "CBT teaches us that our thoughts, feelings, and behaviors are interconnected. By identifying negative thought patterns and challenging them with evidence, we can change how we feel and respond to situations. This process takes practice but can lead to lasting positive changes.",
		category: "Therapy",
		author:   "Dr. Lisa Rodriguez",
	},
}

// SampleArticles builds fresh records for the default article set.
func SampleArticles() []models.Article {
	now := models.Now()
	out := make([]models.Article, 0, len(sampleArticles))
	for _, s := range sampleArticles {
		author := s.author
		if author == "" {
			author = models.DefaultAuthor
		}
		out = append(out, models.Article{
			ID:        models.NewID(),
			Title:     s.title,
			Content:   s.content,
			Category:  s.category,
			Author:    author,
			CreatedAt: now,
		})
	}
	return out
}
