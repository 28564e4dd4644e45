package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/sirupsen/logrus"
)

var pricePattern = regexp.MustCompile(`(?:Rs\.|₹|\$)\s?(\d+(?:,\d+)*(?:\.\d{2})?)`)

// Options configures one scrape run.
type Options struct {
	StoreURL    string
	MaxProducts int
	Concurrent  int
	Delay       time.Duration
	DryRun      bool
}

// Scraper crawls the storefront, persists new products, and indexes the
// catalog in the vector store.
type Scraper struct {
	collector   *colly.Collector
	repoManager *repository.RepositoryManager
	index       *chroma.Index
	logger      *logrus.Logger
	opts        Options
}

// scrapedProduct holds the fields extracted from one product page.
type scrapedProduct struct {
	Title       string
	Price       float64
	Description string
	ImageURL    string
	ProductURL  string
}

func New(opts Options, repoManager *repository.RepositoryManager, index *chroma.Index, logger *logrus.Logger) *Scraper {
	if opts.MaxProducts <= 0 {
		opts.MaxProducts = 25
	}
	if opts.Concurrent <= 0 {
		opts.Concurrent = 2
	}
	if opts.Delay <= 0 {
		opts.Delay = 2 * time.Second
	}

	c := colly.NewCollector(
		colly.UserAgent("NeusearchBot/1.0 (+https://github.com/neusearch/neusearch)"),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Concurrent,
		Delay:       opts.Delay,
	})

	c.SetRequestTimeout(30 * time.Second)

	return &Scraper{
		collector:   c,
		repoManager: repoManager,
		index:       index,
		logger:      logger,
		opts:        opts,
	}
}

// Run scrapes the collection page, then each product page, and returns the
// number of new products persisted.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	s.logger.WithField("store_url", s.opts.StoreURL).Info("Starting product scrape")

	productURLs, err := s.collectProductURLs()
	if err != nil {
		return 0, fmt.Errorf("failed to collect product URLs: %w", err)
	}

	s.logger.WithField("urls", len(productURLs)).Info("Found product URLs")

	if len(productURLs) == 0 {
		return 0, nil
	}

	count := 0
	for i, productURL := range productURLs {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		s.logger.WithFields(logrus.Fields{
			"url":      productURL,
			"progress": fmt.Sprintf("%d/%d", i+1, len(productURLs)),
		}).Debug("Scraping product page")

		scraped, err := s.scrapeProductPage(productURL)
		if err != nil {
			s.logger.WithError(err).WithField("url", productURL).Warn("Failed to scrape product page")
			continue
		}

		if s.opts.DryRun {
			s.logger.WithFields(logrus.Fields{
				"title": scraped.Title,
				"price": scraped.Price,
			}).Info("DRY RUN: Would persist product")
			count++
			continue
		}

		created, err := s.persistProduct(scraped)
		if err != nil {
			s.logger.WithError(err).WithField("url", productURL).Warn("Failed to persist product")
			continue
		}
		if created {
			count++
			s.logger.WithFields(logrus.Fields{
				"title": scraped.Title,
				"price": scraped.Price,
			}).Info("Product scraped")
		}
	}

	if !s.opts.DryRun {
		if err := s.indexCatalog(ctx); err != nil {
			return count, fmt.Errorf("failed to index catalog: %w", err)
		}
	}

	s.logger.WithField("new_products", count).Info("Scrape completed")
	return count, nil
}

// collectProductURLs visits the collection page and gathers product links.
func (s *Scraper) collectProductURLs() ([]string, error) {
	seen := make(map[string]bool)
	var productURLs []string

	c := s.collector.Clone()
	c.OnHTML(`a[href*="/products/"]`, func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || seen[link] {
			return
		}
		// Drop fragments and query strings so variants dedup to one URL
		if u, err := url.Parse(link); err == nil {
			u.RawQuery = ""
			u.Fragment = ""
			link = u.String()
		}
		if seen[link] {
			return
		}
		seen[link] = true
		if len(productURLs) < s.opts.MaxProducts {
			productURLs = append(productURLs, link)
		}
	})

	if err := c.Visit(s.opts.StoreURL); err != nil {
		return nil, err
	}
	c.Wait()

	return productURLs, nil
}

// scrapeProductPage extracts product fields from one product page.
func (s *Scraper) scrapeProductPage(productURL string) (*scrapedProduct, error) {
	scraped := &scrapedProduct{ProductURL: productURL}
	var visitErr error

	c := s.collector.Clone()
	c.OnHTML("html", func(e *colly.HTMLElement) {
		scraped.Title = cleanTitle(e.ChildAttr(`meta[property="og:title"]`, "content"))
		if scraped.Title == "" {
			scraped.Title = titleFromURL(productURL)
		}

		scraped.Description = e.ChildAttr(`meta[property="og:description"]`, "content")
		if scraped.Description == "" {
			scraped.Description = e.ChildAttr(`meta[name="description"]`, "content")
		}

		scraped.ImageURL = e.ChildAttr(`meta[property="og:image"]`, "content")
		scraped.Price = extractPrice(e.Text)
	})
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(productURL); err != nil {
		return nil, err
	}
	c.Wait()

	if visitErr != nil {
		return nil, visitErr
	}
	if scraped.Title == "" {
		return nil, fmt.Errorf("no title extracted from %s", productURL)
	}

	return scraped, nil
}

// persistProduct creates the product row unless the URL is already known.
func (s *Scraper) persistProduct(scraped *scrapedProduct) (bool, error) {
	if _, err := s.repoManager.Product.GetByURL(scraped.ProductURL); err == nil {
		return false, nil
	}

	product := &models.Product{
		Title:       scraped.Title,
		Price:       scraped.Price,
		Description: scraped.Description,
		Features:    models.JSONMap{},
		ImageURL:    scraped.ImageURL,
		Category:    "Activewear",
		ProductURL:  scraped.ProductURL,
	}

	if err := s.repoManager.Product.Create(product); err != nil {
		return false, err
	}
	return true, nil
}

// indexCatalog re-indexes the whole catalog in the vector store.
func (s *Scraper) indexCatalog(ctx context.Context) error {
	if s.index == nil {
		s.logger.Warn("No vector index configured, skipping indexing")
		return nil
	}

	products, err := s.repoManager.Product.GetAll()
	if err != nil {
		return err
	}

	return s.index.IndexProducts(ctx, products)
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	return title
}

// titleFromURL rebuilds a readable title from the product URL slug.
func titleFromURL(productURL string) string {
	parts := strings.Split(strings.TrimRight(productURL, "/"), "/")
	slug := parts[len(parts)-1]

	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// extractPrice pulls the first currency-prefixed amount out of the page text.
func extractPrice(text string) float64 {
	match := pricePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return price
}
