package mysql

const upsertListingSQL = `
INSERT INTO listings
  (id, variant, title, price, price_type, location, image_url, images, description, status,
   seller_id, seller_name, category, bedrooms, bathrooms, phone_number, email)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  variant      = VALUES(variant),
  title        = VALUES(title),
  price        = VALUES(price),
  price_type   = VALUES(price_type),
  location     = VALUES(location),
  image_url    = VALUES(image_url),
  images       = VALUES(images),
  description  = VALUES(description),
  status       = VALUES(status),
  seller_id    = VALUES(seller_id),
  seller_name  = VALUES(seller_name),
  category     = VALUES(category),
  bedrooms     = VALUES(bedrooms),
  bathrooms    = VALUES(bathrooms),
  phone_number = VALUES(phone_number),
  email        = VALUES(email),
  updated_at   = CURRENT_TIMESTAMP
`

const insertReviewsPrefix = "INSERT INTO reviews\n  (id, listing_id, author_name, rating, comment, display_ts, created_at)\nVALUES "

// Plain insert for reviews written by users: the id comes from AUTO_INCREMENT.
const insertUserReviewSQL = `
INSERT INTO reviews (listing_id, author_name, rating, comment, display_ts, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// COALESCE keeps the stored value when the feed sends none.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  author_name = VALUES(author_name),\n" +
	"  rating      = VALUES(rating),\n" +
	"  comment     = VALUES(comment),\n" +
	"  display_ts  = VALUES(display_ts),\n" +
	"  created_at  = COALESCE(VALUES(created_at), reviews.created_at)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), seen_at = CURRENT_TIMESTAMP
`

const listingColumns = `
  l.id, l.variant, l.title, l.price, l.price_type, l.location, l.image_url, l.images,
  l.description, l.status, l.seller_id, l.seller_name, l.category, l.bedrooms, l.bathrooms,
  l.phone_number, l.email`

const getListingSQL = `SELECT` + listingColumns + `
FROM listings l
WHERE l.id = ?
`

const reviewColumns = `
  r.id, r.listing_id, r.author_name, r.rating, r.comment, r.display_ts, r.created_at`

// Newest first; matches idx_reviews_listing.
const listReviewsSQL = `SELECT` + reviewColumns + `
FROM reviews r
WHERE r.listing_id = ?
ORDER BY r.created_at DESC, r.id DESC
LIMIT ?
`

const listVariantReviewsSQL = `SELECT` + reviewColumns + `
FROM reviews r
JOIN listings l ON l.id = r.listing_id
WHERE l.variant = ?
ORDER BY r.created_at DESC, r.id DESC
`
