package sanity

// GROQ projections flatten slugs and references so documents decode
// straight into the data package types.
const (
	productProjection = `{
  _id, _updatedAt, name, "slug": slug.current, description, images, price, featured,
  availability, "category": category->title, healthInfo
}`

	postProjection = `{
  _id, title, "slug": slug.current, excerpt, body, "author": author->name,
  "categories": categories[]->title, mainImage, status, featured, publishedAt
}`

	categoryProjection = `{ _id, title, "slug": slug.current, description }`

	faqProjection = `{
  _id, question, "answer": select(defined(answerText) => answerText, null),
  "answerBlocks": answer, "category": category->title, order, helpful, notHelpful
}`

	tutorialProjection = `{
  _id, _updatedAt, title, "slug": slug.current, difficulty, estimatedTime, description, steps
}`

	businessPageProjection = `{
  _id, _updatedAt, title, "slug": slug.current, hero, sections, seo
}`
)

const (
	queryFeaturedProducts = `*[_type == "product" && featured == true && availability != "discontinued"] | order(_updatedAt desc) [0...$limit] ` + productProjection
	queryProducts         = `*[_type == "product" && availability != "discontinued"] | order(name asc) ` + productProjection
	queryCategories       = `*[_type == "category"] | order(title asc) ` + categoryProjection

	queryFeaturedPosts = `*[_type == "blogPost" && status == "published" && featured == true] | order(publishedAt desc) [0...$limit] ` + postProjection
	queryPosts         = `*[_type == "blogPost" && status == "published"] | order(publishedAt desc) ` + postProjection
	queryPostBySlug    = `*[_type == "blogPost" && status == "published" && slug.current == $slug][0] ` + postProjection
	queryRelatedPosts  = `*[_type == "blogPost" && status == "published" && slug.current != $slug && count(categories[@->title in $categories]) > 0] | order(publishedAt desc) [0...$limit] ` + postProjection

	queryFAQs = `*[_type == "faq"] | order(category->title asc, order asc) ` + faqProjection

	queryTutorials      = `*[_type == "tutorialGuide"] | order(title asc) ` + tutorialProjection
	queryTutorialBySlug = `*[_type == "tutorialGuide" && slug.current == $slug][0] ` + tutorialProjection

	queryBusinessPage = `*[_type == "businessPage" && slug.current == $slug][0] ` + businessPageProjection

	querySearch = `{
  "products": *[_type == "product" && availability != "discontinued" && (name match $term || description match $term)] [0...$limit] ` + productProjection + `,
  "posts": *[_type == "blogPost" && status == "published" && (title match $term || excerpt match $term || pt::text(body) match $term)] | order(publishedAt desc) [0...$limit] ` + postProjection + `
}`

	querySitemap = `*[_type in ["product", "blogPost", "businessPage", "tutorialGuide"] && defined(slug.current) && (_type != "blogPost" || status == "published")] {
  _type, "slug": slug.current, _updatedAt
}`
)
