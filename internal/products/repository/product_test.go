package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCatalogQueryToBSON(t *testing.T) {
	active := true
	minPrice, maxPrice := 20.0, 80.0

	q := CatalogQuery{
		CategoryIDs: []string{"a", "b"},
		Active:      &active,
		MinPrice:    &minPrice,
		MaxPrice:    &maxPrice,
		Search:      "ha long",
	}

	filter := q.toBSON()

	categoryIn, ok := filter["category"].(bson.M)
	if !ok || len(categoryIn["$in"].([]string)) != 2 {
		t.Errorf("category filter = %v, want $in with 2 ids", filter["category"])
	}
	if filter["is_active"] != true {
		t.Errorf("is_active = %v, want true", filter["is_active"])
	}
	// Region never appears here: it narrows the category ids upstream.
	if _, ok := filter["region"]; ok {
		t.Errorf("unexpected region filter: %v", filter["region"])
	}

	price, ok := filter["pricing.adult"].(bson.M)
	if !ok || price["$gte"] != 20.0 || price["$lte"] != 80.0 {
		t.Errorf("price filter = %v", filter["pricing.adult"])
	}

	text, ok := filter["$text"].(bson.M)
	if !ok || text["$search"] != "ha long" {
		t.Errorf("text filter = %v", filter["$text"])
	}
}

func TestCatalogQueryToBSON_SingleCategoryWinsOverList(t *testing.T) {
	q := CatalogQuery{CategoryIDs: []string{"a", "b"}, CategoryID: "c"}
	filter := q.toBSON()
	if _, ok := filter["category"].(bson.M); !ok {
		t.Errorf("category list should take precedence, got %v", filter["category"])
	}

	q = CatalogQuery{CategoryID: "c"}
	filter = q.toBSON()
	if filter["category"] != "c" {
		t.Errorf("category = %v, want c", filter["category"])
	}
}

func TestCatalogQuerySort(t *testing.T) {
	q := CatalogQuery{SortBy: "price", SortDir: "asc"}
	sort := q.sort()
	if len(sort) != 1 || sort[0].Key != "pricing.adult" || sort[0].Value != 1 {
		t.Errorf("sort = %v, want pricing.adult asc", sort)
	}

	q = CatalogQuery{}
	sort = q.sort()
	if sort[0].Key != "created_at" || sort[0].Value != -1 {
		t.Errorf("default sort = %v, want created_at desc", sort)
	}
}

func TestCatalogQuerySort_TextScoreRanksFirst(t *testing.T) {
	q := CatalogQuery{Search: "mekong", SortBy: "rating"}
	sort := q.sort()
	if len(sort) != 2 || sort[0].Key != "score" {
		t.Fatalf("sort = %v, want textScore first", sort)
	}
	if sort[1].Key != "rating.average" {
		t.Errorf("tiebreak = %v, want rating.average", sort[1])
	}
}

func TestValidSortKey(t *testing.T) {
	for _, key := range []string{"createdAt", "title", "price", "rating", "duration"} {
		if !ValidSortKey(key) {
			t.Errorf("ValidSortKey(%q) = false", key)
		}
	}
	if ValidSortKey("popularity") {
		t.Error("ValidSortKey(popularity) = true")
	}
}
