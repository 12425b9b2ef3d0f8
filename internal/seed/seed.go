package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"mikromatter/internal/models"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	NumPosts     int
	NumBookclubs int
	ShouldClean  bool
}

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	r       *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, factory: NewFactory(db), r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Run seeds the database according to opts.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Starting database seeding with %d users, %d posts, %d bookclubs...",
		opts.NumUsers, opts.NumPosts, opts.NumBookclubs)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := s.SeedEngagement(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	clubs, err := s.SeedBookclubs(users, opts.NumBookclubs)
	if err != nil {
		return fmt.Errorf("failed to seed bookclubs: %w", err)
	}
	log.Printf("%d bookclubs created", len(clubs))

	log.Println("Database seeding completed")
	return nil
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE bookclub_members, bookclubs, post_hashtags, hashtags,
		comments, reposts, likes, follows, posts, users CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates users and a follow graph among them. Each user
// follows a handful of others.
func (s *Seeder) SeedSocialMesh(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	for _, follower := range users {
		follows := s.r.Intn(8)
		for i := 0; i < follows; i++ {
			target := users[s.r.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, target); err != nil {
				return nil, err
			}
		}
	}
	return users, nil
}

// SeedEngagement creates posts for the given users along with likes,
// reposts and comments.
func (s *Seeder) SeedEngagement(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to post as")
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.r.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		likes := s.r.Intn(10)
		for j := 0; j < likes; j++ {
			if err := s.factory.CreateLike(users[s.r.Intn(len(users))], post); err != nil {
				return nil, err
			}
		}

		if s.r.Float32() < 0.3 {
			if err := s.factory.CreateRepost(users[s.r.Intn(len(users))], post); err != nil {
				return nil, err
			}
		}

		comments := s.r.Intn(4)
		for j := 0; j < comments; j++ {
			if _, err := s.factory.CreateComment(users[s.r.Intn(len(users))], post); err != nil {
				return nil, err
			}
		}

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return posts, nil
}

// SeedBookclubs creates bookclubs with random creators and members.
func (s *Seeder) SeedBookclubs(users []*models.User, count int) ([]*models.Bookclub, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to create bookclubs as")
	}

	clubs := make([]*models.Bookclub, 0, count)
	for i := 0; i < count; i++ {
		creator := users[s.r.Intn(len(users))]
		club, err := s.factory.CreateBookclub(creator)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)

		members := s.r.Intn(12)
		for j := 0; j < members; j++ {
			member := users[s.r.Intn(len(users))]
			if member.ID == creator.ID {
				continue
			}
			if err := s.factory.AddBookclubMember(club, member); err != nil {
				return nil, err
			}
		}
	}
	return clubs, nil
}
