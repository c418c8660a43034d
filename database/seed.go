package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog/models"
	"blog/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type seedPost struct {
	title    string
	excerpt  string
	content  string
	category string
	tags     []string
}

var seedCategories = []models.Category{
	{Name: "Technology", Description: "Latest trends in technology and programming"},
	{Name: "Travel", Description: "Travel experiences and destination guides"},
	{Name: "Food", Description: "Recipes, restaurant reviews, and culinary adventures"},
	{Name: "Lifestyle", Description: "Tips for better living and personal development"},
}

var seedTags = []string{
	"python", "django", "web-development", "travel", "photography",
	"cooking", "health", "productivity", "tutorial", "review",
}

var seedComments = []string{
	"Great article! Very informative and well-written.",
	"Thanks for sharing this. I learned a lot from your post.",
}

var seedPosts = []seedPost{
	{
		title:    "Getting Started with Django: A Comprehensive Guide",
		excerpt:  "Learn the fundamentals of Django web framework and build your first web application with this comprehensive beginner guide.",
		category: "Technology",
		tags:     []string{"python", "django", "web-development", "tutorial"},
		content: `Django is a high-level Python web framework that encourages rapid development and clean, pragmatic design.

It follows the Model-View-Template pattern. Models describe tables, views turn requests into responses, and templates decide how data is presented.

Install it with pip, run django-admin startproject, and start the development server to see the welcome page.

This is just the beginning. The admin, the ORM and the security middleware are all waiting to be explored.`,
	},
	{
		title:    "Hidden Gems of Southeast Asia: Off the Beaten Path",
		excerpt:  "Discover amazing hidden destinations in Southeast Asia that offer authentic experiences away from the tourist crowds.",
		category: "Travel",
		tags:     []string{"travel", "photography"},
		content: `Southeast Asia is known for Bangkok, Bali and Singapore, but the region hides many quieter places.

Luang Prabang in northern Laos blends colonial architecture with temples, night markets and the dawn alms-giving ceremony.

Hoi An in Vietnam glows at night when thousands of lanterns reflect in the Thu Bon River.

Raja Ampat in West Papua is one of the richest marine environments on Earth and a dream for divers.`,
	},
	{
		title:    "The Art of Homemade Pasta: From Flour to Fork",
		excerpt:  "Master the art of making fresh pasta from scratch with this detailed guide covering dough preparation, shaping techniques, and sauce pairings.",
		category: "Food",
		tags:     []string{"cooking", "tutorial"},
		content: `Flour, eggs and a pinch of salt become silky ribbons that no store-bought pasta can match.

Make a well with the flour, crack the eggs into it, and knead for eight to ten minutes before resting the dough for half an hour.

Roll it thin and cut fettuccine, pappardelle or ravioli. Fresh pasta cooks in two to four minutes in well salted water.

Light sauces suit delicate shapes while chunky sauces need shapes that can hold them.`,
	},
	{
		title:    "10 Productivity Hacks That Actually Work",
		excerpt:  "Discover 10 proven productivity techniques that can help you work smarter, manage your time better, and achieve more with less stress.",
		category: "Lifestyle",
		tags:     []string{"productivity", "tutorial"},
		content: `If a task takes less than two minutes, do it now instead of adding it to a list.

Block time for your work, batch similar tasks, and try focused twenty-five minute intervals with short breaks.

Tackle the hardest task first, review your week every Friday, and schedule demanding work during your peak hours.

Finally, remember that good enough is often better than perfect.`,
	},
}

// Seed loads the sample data set. Every record is looked up by its natural
// key first, so running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB, adminPassword string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := seedAdmin(tx, adminPassword)
		if err != nil {
			return err
		}

		categories := make(map[string]models.Category, len(seedCategories))
		for _, c := range seedCategories {
			category := c
			res := tx.Where(models.Category{Name: c.Name}).
				Attrs(models.Category{Description: c.Description}).
				FirstOrCreate(&category)
			if res.Error != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, res.Error)
			}
			if res.RowsAffected > 0 {
				log.Info().Str("category", category.Name).Msg("Created category")
			}
			categories[c.Name] = category
		}

		tags := make(map[string]models.Tag, len(seedTags))
		for _, name := range seedTags {
			var tag models.Tag
			res := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag)
			if res.Error != nil {
				return fmt.Errorf("seed tag %q: %w", name, res.Error)
			}
			if res.RowsAffected > 0 {
				log.Info().Str("tag", tag.Name).Msg("Created tag")
			}
			tags[name] = tag
		}

		for _, sp := range seedPosts {
			slug := utils.Slugify(sp.title)

			var existing int64
			if err := tx.Model(&models.Post{}).Where("slug = ?", slug).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}

			category := categories[sp.category]
			now := time.Now()
			post := models.Post{
				Title:       sp.title,
				Slug:        slug,
				Content:     sp.content,
				Excerpt:     sp.excerpt,
				UserID:      admin.ID,
				CategoryID:  &category.ID,
				Status:      models.StatusPublished,
				PublishedAt: &now,
			}
			for _, name := range sp.tags {
				post.Tags = append(post.Tags, tags[name])
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("seed post %q: %w", sp.title, err)
			}

			for _, content := range seedComments {
				comment := models.Comment{PostID: post.ID, UserID: admin.ID, Content: content, IsActive: true}
				if err := tx.Create(&comment).Error; err != nil {
					return err
				}
			}
			log.Info().Str("post", post.Title).Msg("Created post")
		}

		return nil
	})
}

func seedAdmin(tx *gorm.DB, password string) (*models.User, error) {
	var admin models.User
	err := tx.Where("username = ?", "admin").First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if password == "" {
		return nil, errors.New("SEED_ADMIN_PASSWORD is required to create the admin user")
	}

	admin = models.User{
		Username: "admin",
		Email:    "admin@example.com",
		IsActive: true,
		IsStaff:  true,
	}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	if err := tx.Create(&admin).Error; err != nil {
		return nil, err
	}
	log.Info().Msg("Created admin user")
	return &admin, nil
}
