package artsy

import (
	"context"
	"net/url"
	"strings"
)

// Flattened shapes returned to handlers. Absent optional upstream
// fields map to empty strings, never errors.

type ArtistSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Artist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Birthday    string `json:"birthday"`
	Deathday    string `json:"deathday"`
	Nationality string `json:"nationality"`
	Biography   string `json:"biography"`
	Image       string `json:"image"`
}

type Artwork struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Image string `json:"image"`
}

type Category struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type SimilarArtist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Birthday    string `json:"birthday"`
	Deathday    string `json:"deathday"`
	Nationality string `json:"nationality"`
}

// Upstream hypermedia envelope fragments.

type link struct {
	Href string `json:"href"`
}

type resultLinks struct {
	Self      link `json:"self"`
	Thumbnail link `json:"thumbnail"`
}

// SearchArtists queries the catalog search endpoint and keeps only
// artist results.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]ArtistSummary, error) {
	var payload struct {
		Embedded struct {
			Results []struct {
				OgType string      `json:"og_type"`
				Title  string      `json:"title"`
				Links  resultLinks `json:"_links"`
			} `json:"results"`
		} `json:"_embedded"`
	}

	params := url.Values{
		"q":    {query},
		"type": {"artist"},
		"size": {"10"},
	}
	if err := c.get(ctx, "/api/search", params, &payload); err != nil {
		return nil, err
	}

	artists := make([]ArtistSummary, 0, len(payload.Embedded.Results))
	for _, result := range payload.Embedded.Results {
		if result.OgType != "artist" {
			continue
		}
		artists = append(artists, ArtistSummary{
			ID:    idFromSelfLink(result.Links.Self.Href),
			Name:  result.Title,
			Image: result.Links.Thumbnail.Href,
		})
	}
	return artists, nil
}

func (c *Client) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	var payload struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Birthday    string      `json:"birthday"`
		Deathday    string      `json:"deathday"`
		Nationality string      `json:"nationality"`
		Biography   string      `json:"biography"`
		Links       resultLinks `json:"_links"`
	}

	if err := c.get(ctx, "/api/artists/"+url.PathEscape(artistID), nil, &payload); err != nil {
		return nil, err
	}

	return &Artist{
		ID:          payload.ID,
		Name:        payload.Name,
		Birthday:    payload.Birthday,
		Deathday:    payload.Deathday,
		Nationality: payload.Nationality,
		Biography:   payload.Biography,
		Image:       payload.Links.Thumbnail.Href,
	}, nil
}

func (c *Client) GetArtworks(ctx context.Context, artistID string) ([]Artwork, error) {
	var payload struct {
		Embedded struct {
			Artworks []struct {
				ID    string      `json:"id"`
				Title string      `json:"title"`
				Date  string      `json:"date"`
				Links resultLinks `json:"_links"`
			} `json:"artworks"`
		} `json:"_embedded"`
	}

	params := url.Values{
		"artist_id": {artistID},
		"size":      {"10"},
	}
	if err := c.get(ctx, "/api/artworks", params, &payload); err != nil {
		return nil, err
	}

	artworks := make([]Artwork, 0, len(payload.Embedded.Artworks))
	for _, artwork := range payload.Embedded.Artworks {
		artworks = append(artworks, Artwork{
			ID:    artwork.ID,
			Title: artwork.Title,
			Date:  artwork.Date,
			Image: artwork.Links.Thumbnail.Href,
		})
	}
	return artworks, nil
}

func (c *Client) GetCategories(ctx context.Context, artworkID string) ([]Category, error) {
	var payload struct {
		Embedded struct {
			Genes []struct {
				Name  string      `json:"name"`
				Links resultLinks `json:"_links"`
			} `json:"genes"`
		} `json:"_embedded"`
	}

	params := url.Values{"artwork_id": {artworkID}}
	if err := c.get(ctx, "/api/genes", params, &payload); err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(payload.Embedded.Genes))
	for _, gene := range payload.Embedded.Genes {
		categories = append(categories, Category{
			Name:  gene.Name,
			Image: gene.Links.Thumbnail.Href,
		})
	}
	return categories, nil
}

func (c *Client) GetSimilarArtists(ctx context.Context, artistID string) ([]SimilarArtist, error) {
	var payload struct {
		Embedded struct {
			Artists []struct {
				ID          string      `json:"id"`
				Name        string      `json:"name"`
				Birthday    string      `json:"birthday"`
				Deathday    string      `json:"deathday"`
				Nationality string      `json:"nationality"`
				Links       resultLinks `json:"_links"`
			} `json:"artists"`
		} `json:"_embedded"`
	}

	params := url.Values{
		"similar_to_artist_id": {artistID},
		"size":                 {"10"},
	}
	if err := c.get(ctx, "/api/artists", params, &payload); err != nil {
		return nil, err
	}

	artists := make([]SimilarArtist, 0, len(payload.Embedded.Artists))
	for _, artist := range payload.Embedded.Artists {
		artists = append(artists, SimilarArtist{
			ID:          artist.ID,
			Name:        artist.Name,
			Image:       artist.Links.Thumbnail.Href,
			Birthday:    artist.Birthday,
			Deathday:    artist.Deathday,
			Nationality: artist.Nationality,
		})
	}
	return artists, nil
}

// idFromSelfLink extracts the artist id from the tail of a search
// result's self href; search results carry no id field of their own.
func idFromSelfLink(href string) string {
	if href == "" {
		return ""
	}
	parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
	return parts[len(parts)-1]
}
